package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakePiketServer keeps a seven-day roster in memory so replacement
// semantics can be observed across calls.
type fakePiketServer struct {
	days map[int][]int
}

func (f *fakePiketServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/piket", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			schedule := make([]map[string]any, 0, 7)
			for day := 0; day < 7; day++ {
				assignments := make([]map[string]any, 0, len(f.days[day]))
				for _, id := range f.days[day] {
					assignments = append(assignments, map[string]any{"user_id": id, "name": fmt.Sprintf("user-%d", id)})
				}
				schedule = append(schedule, map[string]any{"day_of_week": day, "assignments": assignments})
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "schedule": schedule})
		case http.MethodPost:
			var body struct {
				DayOfWeek int   `json:"day_of_week"`
				UserIDs   []int `json:"user_ids"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.days[body.DayOfWeek] = body.UserIDs
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		}
	})
	mux.HandleFunc("/api/piket/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.NotFound(w, r)
			return
		}
		var day int
		fmt.Sscanf(r.URL.Path, "/api/piket/%d", &day)
		delete(f.days, day)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	return mux
}

func TestPiketUpdateReplacesDayRoster(t *testing.T) {
	fake := &fakePiketServer{days: map[int][]int{1: {10, 20, 30}}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	// Update is a full replacement, not a merge: 20 and 30 must vanish.
	if err := c.Piket.Update(ctx, 1, []int{10, 40}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	res, err := c.Piket.Schedule(ctx)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	var monday []int
	for _, day := range res.Schedule {
		if day.DayOfWeek == 1 {
			for _, a := range day.Assignments {
				monday = append(monday, a.UserID)
			}
		}
	}
	if len(monday) != 2 || monday[0] != 10 || monday[1] != 40 {
		t.Fatalf("monday roster = %v, want [10 40]", monday)
	}
}

func TestPiketClearEmptiesDay(t *testing.T) {
	fake := &fakePiketServer{days: map[int][]int{3: {5}}}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Piket.Clear(context.Background(), 3); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := fake.days[3]; len(got) != 0 {
		t.Fatalf("day 3 roster = %v, want empty", got)
	}
}

func TestAttendanceDuplicateMarkIsConflict(t *testing.T) {
	marked := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var mark Mark
		json.NewDecoder(r.Body).Decode(&mark)
		key := fmt.Sprintf("%d/%d", mark.SessionID, mark.UserID)
		if marked[key] {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{"error": "Attendance already marked for this session"})
			return
		}
		marked[key] = true
		json.NewEncoder(w).Encode(map[string]any{"success": true, "attendance": map[string]any{"status": mark.Status}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()
	mark := Mark{SessionID: 1, UserID: 2, Status: "present"}

	if _, err := c.Attendance.MarkRegular(ctx, mark); err != nil {
		t.Fatalf("first mark failed: %v", err)
	}
	_, err := c.Attendance.MarkRegular(ctx, mark)
	if !IsConflict(err) {
		t.Fatalf("second mark error = %v, want conflict", err)
	}
}

func TestAttendanceCoreAndRegularUseDistinctRoutes(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()
	mark := Mark{SessionID: 1, UserID: 2, Status: "present"}
	if _, err := c.Attendance.MarkRegular(ctx, mark); err != nil {
		t.Fatalf("MarkRegular failed: %v", err)
	}
	if _, err := c.Attendance.MarkCore(ctx, mark); err != nil {
		t.Fatalf("MarkCore failed: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/api/attendance" || paths[1] != "/api/attendance/core" {
		t.Fatalf("paths = %v", paths)
	}
}

func TestSessionLockOnLockedSessionSurfacesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "Session is already locked"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Sessions.Lock(context.Background(), 9)
	if err == nil {
		t.Fatal("Lock succeeded, want error")
	}
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error = %T, want *Error", err)
	}
	if apiErr.Message != "Session is already locked" {
		t.Fatalf("Message = %q", apiErr.Message)
	}
}

func TestMembersAssignPicSendsNullForDetach(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Members.AssignPic(context.Background(), 4, nil); err != nil {
		t.Fatalf("AssignPic failed: %v", err)
	}
	if string(raw["pic_id"]) != "null" {
		t.Fatalf("pic_id = %s, want null", raw["pic_id"])
	}
}

func TestNotulensiDeleteUsesByIDRoute(t *testing.T) {
	var path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Notulensi.Delete(context.Background(), 12); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if method != http.MethodDelete || path != "/api/notulensi/by-id/12" {
		t.Fatalf("got %s %s", method, path)
	}
}

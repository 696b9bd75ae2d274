package mockserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"tableflip.dev/daybook/pkg/entry"
	"tableflip.dev/daybook/pkg/native"
)

type userKey struct{}

func currentUser(r *http.Request) entry.User {
	u, _ := r.Context().Value(userKey{}).(entry.User)
	return u
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, Prefix),
			Query:  r.URL.RawQuery,
			Body:   body,
		})
		s.mu.Unlock()
		s.log.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.userFor(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, u)))
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body is required")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[req.Username]
	if !ok || a.password != req.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	sid := s.newSession(a.user.ID)
	user := a.user
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    user,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	u, ok := s.userFor(r)
	if !ok {
		writeJSON(w, http.StatusOK, entry.Status{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, entry.Status{Authenticated: true, User: &u})
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := defaultLimit, 0
	var err error
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid limit or offset parameter")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit or offset parameter")
			return
		}
	}
	limit = min(max(limit, 1), maxLimit)

	var on *entry.Date
	if v := q.Get("date"); v != "" {
		d, err := entry.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		on = &d
	}

	s.mu.Lock()
	all := s.owned(currentUser(r).ID)
	s.mu.Unlock()

	matched := make([]entry.JournalEntry, 0, len(all))
	for _, e := range all {
		if on == nil || e.Date == *on {
			matched = append(matched, e)
		}
	}
	total := len(matched)
	page := []entry.JournalEntry{}
	if offset < total {
		page = matched[offset:min(offset+limit, total)]
	}

	if s.bareList {
		writeJSON(w, http.StatusOK, page)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": page, "total": total})
}

func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (entry.Draft, bool) {
	var d entry.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return d, false
	}
	if d.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "Date is required")
		return d, false
	}
	if utf8.RuneCountInString(d.Title) > entry.MaxTitleLength {
		writeError(w, http.StatusBadRequest, "Title must be 200 characters or fewer")
		return d, false
	}
	return d, true
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	d, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	u := currentUser(r)

	s.mu.Lock()
	s.nextEntry++
	now := entry.Timestamp{Time: s.now()}
	e := entry.JournalEntry{
		ID:         s.nextEntry,
		Title:      d.Title,
		Content:    d.Content,
		Date:       d.Date,
		SyncStatus: entry.SyncNone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.entries[e.ID] = &record{owner: u.ID, entry: e}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, e)
}

// lookup finds an entry owned by the caller. It writes the error response
// itself and must be called with s.mu held.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id int64) (*record, bool) {
	rec, ok := s.entries[id]
	if !ok || rec.owner != currentUser(r).ID {
		writeError(w, http.StatusNotFound, "Journal entry not found")
		return nil, false
	}
	return rec, true
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid entry ID")
		return 0, false
	}
	return id, true
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.lookup(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec.entry)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	d, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.lookup(w, r, id)
	if !ok {
		return
	}
	rec.entry.Title = d.Title
	rec.entry.Content = d.Content
	rec.entry.Date = d.Date
	rec.entry.UpdatedAt = entry.Timestamp{Time: s.now()}
	if rec.entry.SyncStatus == entry.Synced {
		rec.entry.SyncStatus = entry.SyncPending
	}
	writeJSON(w, http.StatusOK, rec.entry)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(w, r, id); !ok {
		return
	}
	delete(s.entries, id)
	w.WriteHeader(http.StatusNoContent)
}

// NoteText formats entries the way the notes shortcut expects them.
func NoteText(entries []entry.JournalEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s\n\n%s\n\nDate: %s", e.Title, e.Content, e.Date))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func exportResponse(entries []entry.JournalEntry) map[string]any {
	return map[string]any{
		"message":       "Export ready",
		"shortcuts_url": native.ShortcutURL("AddToNotes", NoteText(entries)),
		"count":         len(entries),
	}
}

func (s *Server) exportEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.lookup(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, exportResponse([]entry.JournalEntry{rec.entry}))
}

func (s *Server) batchExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntryIDs []int64 `json:"entry_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.EntryIDs) == 0 {
		writeError(w, http.StatusBadRequest, "entry_ids is required")
		return
	}
	u := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	var found []entry.JournalEntry
	for _, id := range req.EntryIDs {
		if rec, ok := s.entries[id]; ok && rec.owner == u.ID {
			found = append(found, rec.entry)
		}
	}
	if len(found) == 0 {
		writeError(w, http.StatusNotFound, "No valid entries found")
		return
	}
	writeJSON(w, http.StatusOK, exportResponse(found))
}

// push marks rec synced unless it is set to fail. Must hold s.mu.
func (s *Server) push(rec *record) bool {
	if s.failSync[rec.entry.ID] {
		rec.entry.SyncStatus = entry.SyncError
		return false
	}
	if rec.entry.CalendarEventID == "" {
		rec.entry.CalendarEventID = uuid.NewString()
	}
	rec.entry.SyncStatus = entry.Synced
	return true
}

func (s *Server) syncEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.lookup(w, r, id)
	if !ok {
		return
	}
	if !s.push(rec) {
		writeError(w, http.StatusInternalServerError, "Failed to sync entry to calendar")
		return
	}
	e := rec.entry
	writeJSON(w, http.StatusOK, entry.EntrySyncResult{Message: "Entry synced successfully", Entry: &e})
}

func (s *Server) syncAll(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	res := entry.SyncResult{Message: "Sync completed"}
	for _, rec := range s.entries {
		if rec.owner != u.ID {
			continue
		}
		if rec.entry.SyncStatus == entry.Synced {
			res.Skipped++
			continue
		}
		if s.push(rec) {
			res.Success++
		} else {
			res.Failed++
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	events := []entry.CalendarEvent{}
	for _, e := range s.owned(u.ID) {
		if e.SyncStatus != entry.Synced {
			continue
		}
		id := e.ID
		start := e.Date.Time()
		events = append(events, entry.CalendarEvent{
			ID:               int64(len(events) + 1),
			ExternalEventID:  e.CalendarEventID,
			JournalEntryID:   &id,
			Title:            e.Title,
			Start:            entry.Timestamp{Time: start},
			End:              entry.Timestamp{Time: start.Add(24 * time.Hour)},
			Description:      e.Content,
			CompletionStatus: e.CompletionStatus,
			SyncDirection:    "to_calendar",
			LastSyncedAt:     e.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "total": len(events)})
}

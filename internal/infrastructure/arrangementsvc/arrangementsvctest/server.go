// Package arrangementsvctest provides an in-memory arrangement service for
// tests that exercise the real HTTP client.
package arrangementsvctest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"arrangement/internal/domain/entities"
)

type participant struct {
	vm          entities.ParticipantViewModel
	cancelToken string
}

// Server records requests and keeps events and participants in memory.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	seq          int
	events       map[string]entities.EventViewModel
	order        []string
	editTokens   map[string]string
	participants map[string][]participant
	requests     []string
	remote       entities.EventsAndParticipations
	officeEvents []entities.OfficeEvent
	employees    map[string]entities.Employee
}

func NewServer() *Server {
	s := &Server{
		events:       map[string]entities.EventViewModel{},
		editTokens:   map[string]string{},
		participants: map[string][]participant{},
		employees:    map[string]entities.Employee{},
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			s.mu.Lock()
			s.requests = append(s.requests, req.Method+" "+req.URL.Path)
			s.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/events", s.postEvent)
	r.Get("/events", s.listEvents(false))
	r.Get("/events/previous", s.listEvents(true))
	r.Get("/events/id", s.shortname)
	r.Route("/events/{id}", func(r chi.Router) {
		r.Get("/", s.getEvent)
		r.Put("/", s.putEvent)
		r.Delete("/", s.deleteEvent)
		r.Get("/participants", s.getParticipants)
		r.Get("/participants/count", s.count)
		r.Get("/participants/export", s.export)
		r.Get("/participants/{email}/waitinglist-spot", s.waitinglistSpot)
		r.Post("/participants/{email}", s.postParticipant)
		r.Delete("/participants/{email}", s.deleteParticipant)
	})
	r.Get("/events-and-participations/{employeeID}", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.remote)
	})
	r.Get("/office-events/{date}", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.officeEvents)
	})
	r.Get("/v2/employees/{id}", func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		emp, ok := s.employees[chi.URLParam(req, "id")]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, emp)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) nextID() string {
	s.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.seq)
}

// SetRemote sets what /events-and-participations returns.
func (s *Server) SetRemote(r entities.EventsAndParticipations) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remote = r
}

// SetOfficeEvents sets the office calendar served for every date.
func (s *Server) SetOfficeEvents(events []entities.OfficeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.officeEvents = events
}

// AddEmployee makes emp available from the employee service routes.
func (s *Server) AddEmployee(id int, emp entities.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[strconv.Itoa(id)] = emp
}

// AddEvent stores vm and returns its id and edit token.
func (s *Server) AddEvent(vm entities.EventViewModel) (id, editToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = s.nextID()
	editToken = "edit-" + id
	if vm.ParticipantQuestions == nil {
		vm.ParticipantQuestions = []entities.Question{}
	}
	s.events[id] = vm
	s.order = append(s.order, id)
	s.editTokens[id] = editToken
	return id, editToken
}

// Event returns the stored view model of id.
func (s *Server) Event(id string) (entities.EventViewModel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vm, ok := s.events[id]
	return vm, ok
}

// EventIDs lists stored events in creation order.
func (s *Server) EventIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Participants returns the registrations of id in sign-up order.
func (s *Server) Participants(id string) []entities.ParticipantViewModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.ParticipantViewModel, 0, len(s.participants[id]))
	for _, p := range s.participants[id] {
		out = append(out, p.vm)
	}
	return out
}

// Requests lists "METHOD /path" for every request served so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests counts requests equal to "METHOD /path".
func (s *Server) CountRequests(methodAndPath string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == methodAndPath {
			n++
		}
	}
	return n
}

func viewOf(w entities.EventWriteModel) entities.EventViewModel {
	return entities.EventViewModel{
		Title:                   w.Title,
		Description:             w.Description,
		Location:                w.Location,
		Offices:                 w.Offices,
		StartDate:               w.StartDate,
		EndDate:                 w.EndDate,
		OpenForRegistrationTime: w.OpenForRegistrationTime,
		CloseRegistrationTime:   w.CloseRegistrationTime,
		OrganizerName:           w.OrganizerName,
		OrganizerEmail:          w.OrganizerEmail,
		MaxParticipants:         w.MaxParticipants,
		ParticipantQuestions:    w.ParticipantQuestions,
		Program:                 w.Program,
		HasWaitingList:          w.HasWaitingList,
		IsExternal:              w.IsExternal,
		IsHidden:                w.IsHidden,
		Shortname:               w.Shortname,
		CustomHexColor:          w.CustomHexColor,
	}
}

func (s *Server) postEvent(w http.ResponseWriter, req *http.Request) {
	var body entities.EventWriteModel
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vm := viewOf(body)
	for i := range vm.ParticipantQuestions {
		vm.ParticipantQuestions[i].ID = i + 1
	}
	id, tok := s.AddEvent(vm)
	writeJSON(w, http.StatusOK, entities.NewEventViewModel{
		Event:     entities.EventWithID{ID: id, EventViewModel: vm},
		EditToken: tok,
	})
}

func (s *Server) listEvents(past bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		now := time.Now()
		out := []entities.EventWithID{}
		for _, id := range s.order {
			vm := s.events[id]
			if vm.EndDate.Instant().Before(now) == past {
				vm.NumberOfParticipants = len(s.participants[id])
				out = append(out, entities.EventWithID{ID: id, EventViewModel: vm})
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) shortname(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := req.URL.Query().Get("shortname")
	for _, id := range s.order {
		if vm := s.events[id]; vm.Shortname != "" && vm.Shortname == name {
			writeJSON(w, http.StatusOK, id)
			return
		}
	}
	http.Error(w, "Fant ikke arrangementet", http.StatusNotFound)
}

// lookup returns the event of the request with the lock held, or writes a
// 404 and returns false.
func (s *Server) lookup(w http.ResponseWriter, req *http.Request) (string, entities.EventViewModel, bool) {
	id := chi.URLParam(req, "id")
	vm, ok := s.events[id]
	if !ok {
		http.Error(w, "Fant ikke arrangementet", http.StatusNotFound)
	}
	return id, vm, ok
}

func (s *Server) authorized(w http.ResponseWriter, req *http.Request, id string) bool {
	if req.URL.Query().Get("editToken") != s.editTokens[id] {
		http.Error(w, "Ugyldig redigeringsnøkkel", http.StatusForbidden)
		return false
	}
	return true
}

func (s *Server) getEvent(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, vm, ok := s.lookup(w, req)
	if !ok {
		return
	}
	vm.NumberOfParticipants = len(s.participants[id])
	writeJSON(w, http.StatusOK, vm)
}

func (s *Server) putEvent(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, old, ok := s.lookup(w, req)
	if !ok || !s.authorized(w, req, id) {
		return
	}
	var body entities.EventWriteModel
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vm := viewOf(body)
	vm.IsCancelled = old.IsCancelled
	s.events[id] = vm
	writeJSON(w, http.StatusOK, vm)
}

func (s *Server) deleteEvent(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, vm, ok := s.lookup(w, req)
	if !ok || !s.authorized(w, req, id) {
		return
	}
	vm.IsCancelled = true
	s.events[id] = vm
	w.WriteHeader(http.StatusNoContent)
}

func limitOf(vm entities.EventViewModel) (int, bool) {
	if vm.MaxParticipants == nil {
		return 0, false
	}
	return *vm.MaxParticipants, true
}

func (s *Server) getParticipants(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, vm, ok := s.lookup(w, req)
	if !ok {
		return
	}
	withEmail := req.URL.Query().Get("editToken") == s.editTokens[id]
	out := entities.ParticipantViewModelsWithWaitingList{Attendees: []entities.ParticipantViewModel{}}
	if vm.HasWaitingList {
		out.WaitingList = []entities.ParticipantViewModel{}
	}
	limit, limited := limitOf(vm)
	for i, p := range s.participants[id] {
		pvm := p.vm
		if !withEmail {
			pvm.Email = ""
		}
		if limited && i >= limit {
			out.WaitingList = append(out.WaitingList, pvm)
		} else {
			out.Attendees = append(out.Attendees, pvm)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) count(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, ok := s.lookup(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, len(s.participants[id]))
}

func (s *Server) export(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, ok := s.lookup(w, req)
	if !ok || !s.authorized(w, req, id) {
		return
	}
	var b strings.Builder
	b.WriteString("Navn;E-post;Avdeling\n")
	for _, p := range s.participants[id] {
		fmt.Fprintf(&b, "%s;%s;%s\n", p.vm.Name, p.vm.Email, p.vm.Department)
	}
	w.Header().Set("Content-Type", "text/csv")
	_, _ = w.Write([]byte(b.String()))
}

func emailParam(req *http.Request) string {
	raw := chi.URLParam(req, "email")
	if e, err := url.PathUnescape(raw); err == nil {
		return e
	}
	return raw
}

func (s *Server) waitinglistSpot(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, vm, ok := s.lookup(w, req)
	if !ok {
		return
	}
	email := emailParam(req)
	limit, limited := limitOf(vm)
	for i, p := range s.participants[id] {
		if p.vm.Email != email {
			continue
		}
		spot := 0
		if limited && i >= limit {
			spot = i - limit + 1
		}
		writeJSON(w, http.StatusOK, spot)
		return
	}
	http.Error(w, "Fant ikke deltakeren", http.StatusNotFound)
}

func (s *Server) postParticipant(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, ok := s.lookup(w, req)
	if !ok {
		return
	}
	var body entities.ParticipantWriteModel
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	email := emailParam(req)
	for _, p := range s.participants[id] {
		if p.vm.Email == email {
			http.Error(w, "Du er allerede påmeldt", http.StatusConflict)
			return
		}
	}
	answers := make([]entities.QuestionAndAnswer, 0, len(body.ParticipantAnswers))
	for _, a := range body.ParticipantAnswers {
		answers = append(answers, entities.QuestionAndAnswer{QuestionID: a.QuestionID, EventID: id, Email: email, Answer: a.Answer})
	}
	s.seq++
	p := participant{
		vm: entities.ParticipantViewModel{
			Name:               body.Name,
			Email:              email,
			Department:         body.Department,
			EventID:            id,
			RegistrationTime:   time.Now().UnixMilli(),
			ParticipantAnswers: answers,
		},
		cancelToken: fmt.Sprintf("cancel-%d", s.seq),
	}
	s.participants[id] = append(s.participants[id], p)
	writeJSON(w, http.StatusOK, entities.NewParticipantViewModel{Participant: p.vm, CancellationToken: p.cancelToken})
}

func (s *Server) deleteParticipant(w http.ResponseWriter, req *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _, ok := s.lookup(w, req)
	if !ok {
		return
	}
	email := emailParam(req)
	list := s.participants[id]
	for i, p := range list {
		if p.vm.Email != email {
			continue
		}
		if req.URL.Query().Get("cancellationToken") != p.cancelToken {
			http.Error(w, "Ugyldig avmeldingsnøkkel", http.StatusForbidden)
			return
		}
		s.participants[id] = append(list[:i], list[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Error(w, "Fant ikke deltakeren", http.StatusNotFound)
}

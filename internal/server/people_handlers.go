package server

import (
	"net/http"

	"github.com/subscriptio/subscriptio/internal/models"
)

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.people.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if people == nil {
		people = []models.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var person models.Person
	if err := decode(r, &person); err != nil {
		writeError(w, err)
		return
	}
	if err := s.people.Create(r.Context(), userID(r), &person); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := s.people.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var person models.Person
	if err := decode(r, &person); err != nil {
		writeError(w, err)
		return
	}
	person.ID = r.PathValue("id")
	if err := s.people.Update(r.Context(), userID(r), &person); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.people.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.people.Balances(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

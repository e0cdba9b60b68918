package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	metaset "github.com/reoring/metaset"
	"github.com/reoring/metaset/dsl"
	"github.com/reoring/metaset/middleware"
)

// RecordStore is a simple in-memory store.
type RecordStore struct {
	mu      sync.RWMutex
	records map[int]metaset.Entry
	nextID  int
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[int]metaset.Entry),
		nextID:  1,
	}
}

func (s *RecordStore) Create(e metaset.Entry) (int, metaset.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.records[id] = e

	return id, e
}

func (s *RecordStore) GetAll() []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, map[string]any{"id": id, "record": s.records[id]})
	}
	return out
}

func (s *RecordStore) GetByID(id int) (metaset.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.records[id]
	return e, exists
}

func (s *RecordStore) Update(id int, e metaset.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return false
	}

	s.records[id] = e
	return true
}

func (s *RecordStore) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return false
	}

	delete(s.records, id)
	return true
}

// Server holds our application state.
type Server struct {
	store  *RecordStore
	schema *metaset.Schema
}

func NewServer() *Server {
	// Declare the contact record model using the metaset DSL.
	schema := dsl.Schema().
		Field("name", dsl.String()).Required().
		Field("email", dsl.String()).Required().
		Field("age", dsl.Int()).
		Field("active", dsl.Bool()).
		Field("tags", dsl.ListOf(dsl.String())).
		MustBuild()

	return &Server{
		store:  NewRecordStore(),
		schema: schema,
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetRecords(w, r)
	case http.MethodPost:
		s.handleCreateRecords(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	// Extract ID from path
	path := strings.TrimPrefix(r.URL.Path, "/records/")
	id, err := strconv.Atoi(path)
	if err != nil {
		http.Error(w, "Invalid record ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetRecord(w, r, id)
	case http.MethodPatch:
		s.handlePatchRecord(w, r, id)
	case http.MethodDelete:
		s.handleDeleteRecord(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetRecords(w http.ResponseWriter, _ *http.Request) {
	records := s.store.GetAll()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, _ *http.Request, id int) {
	record, exists := s.store.GetByID(id)
	if !exists {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

func (s *Server) handleCreateRecords(w http.ResponseWriter, r *http.Request) {
	// CheckBody enforces the size limit, rejects duplicate keys and
	// validates every entry against the schema. A single object body
	// creates one record; an array body creates many.
	entries, fail := middleware.CheckBody(s.schema, r.Body, middleware.DefaultBodyOpt())
	if fail != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(fail)
		return
	}

	created := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		id, stored := s.store.Create(e)
		created = append(created, map[string]any{"id": id, "record": stored})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"created": created,
		"count":   len(created),
	})
}

func (s *Server) handlePatchRecord(w http.ResponseWriter, r *http.Request, id int) {
	existing, exists := s.store.GetByID(id)
	if !exists {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	patches, err := metaset.LoadData(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		http.Error(w, fmt.Sprintf("Error: %v", err), http.StatusBadRequest)
		return
	}
	if len(patches) != 1 {
		http.Error(w, "PATCH takes exactly one record", http.StatusBadRequest)
		return
	}

	// Apply only the keys present in the request body, then validate the
	// merged record before storing it.
	updated := make(metaset.Entry, len(existing))
	for k, v := range existing {
		updated[k] = v
	}
	updatedFields := make([]string, 0, len(patches[0]))
	for k, v := range patches[0] {
		updated[k] = v
		updatedFields = append(updatedFields, k)
	}
	sort.Strings(updatedFields)

	if vs := s.schema.ValidateEntry(updated); len(vs) > 0 {
		s.writeViolations(w, vs)
		return
	}

	s.store.Update(id, updated)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"record":         updated,
		"updated_fields": updatedFields,
	})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, _ *http.Request, id int) {
	if !s.store.Delete(id) {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.schema.JSONSchema())
}

func (s *Server) writeViolations(w http.ResponseWriter, vs metaset.Violations) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	details := make([]map[string]interface{}, len(vs))
	for i, v := range vs {
		details[i] = map[string]interface{}{
			"field":   v.Field,
			"code":    v.Code,
			"message": v.Message,
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":      "Validation failed",
		"violations": details,
	})
}

func main() {
	server := NewServer()

	// Add some initial data
	server.store.Create(metaset.Entry{"name": "Taro", "email": "taro@example.com", "age": 30, "active": true})
	server.store.Create(metaset.Entry{"name": "Hanako", "email": "hanako@example.com", "age": 25, "active": true})

	// Setup routes
	http.HandleFunc("/records", server.handleRecords)
	http.HandleFunc("/records/", server.handleRecordByID)
	http.HandleFunc("/schema", server.handleSchema)

	// Health check
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Root handler with usage instructions
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "metaset Record API Sample",
			"endpoints": map[string]string{
				"GET /records":         "Get all records",
				"POST /records":        "Create records (one object or an array)",
				"GET /records/{id}":    "Get record by ID",
				"PATCH /records/{id}":  "Partially update record",
				"DELETE /records/{id}": "Delete record",
				"GET /schema":          "Get JSON Schema for the record model",
				"GET /health":          "Health check",
			},
			"examples": map[string]interface{}{
				"create_record": map[string]interface{}{
					"method": "POST",
					"url":    "/records",
					"body": map[string]interface{}{
						"name":   "Taro",
						"email":  "taro@example.com",
						"age":    30,
						"active": true,
					},
				},
				"partial_update": map[string]interface{}{
					"method": "PATCH",
					"url":    "/records/1",
					"body": map[string]interface{}{
						"name": "Jiro",
					},
					"note": "Only updates the 'name' field, other fields remain unchanged",
				},
			},
		})
	})

	log.Println("🚀 metaset Record API server starting on :8080")
	log.Println("📖 Visit http://localhost:8080 for usage instructions")
	log.Println("🔍 Visit http://localhost:8080/schema to see the JSON Schema")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}

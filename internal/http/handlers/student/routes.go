package student

import (
	"net/http"

	"github.com/aanand-mishra/student-roster/internal/metrics"
	"github.com/aanand-mishra/student-roster/internal/storage"
)

// Register mounts the Student routes on mux, each wrapped with a metrics
// middleware:
//
//	POST   /api/students        → create a new student
//	GET    /api/students        → list all students
//	GET    /api/students/{id}   → get one student by ID
//	PUT    /api/students/{id}   → update a student
//	DELETE /api/students/{id}   → delete a student
func Register(mux *http.ServeMux, s storage.Storage, rec metrics.Recorder) {
	if rec == nil {
		rec = metrics.Nop{}
	}
	mux.Handle("POST /api/students", metrics.Middleware(rec, "create", New(s)))
	mux.Handle("GET /api/students", metrics.Middleware(rec, "list", GetList(s)))
	mux.Handle("GET /api/students/{id}", metrics.Middleware(rec, "get", GetByID(s)))
	mux.Handle("PUT /api/students/{id}", metrics.Middleware(rec, "update", Update(s)))
	mux.Handle("DELETE /api/students/{id}", metrics.Middleware(rec, "delete", Delete(s)))
}

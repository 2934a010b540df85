// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a store. To inject
// dependencies each factory accepts the storage.Storage and returns the
// actual handler, which closes over it:
//
//	router.HandleFunc("POST /api/students", student.New(storage))
//
// Every write goes through the same steps as the CLI:
// decode, trim (types.Normalize), validate (types.Validate), then call
// the store. Validation failures are 400 with the validator's message;
// unknown ids are 404; storage failures are 500.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// Register wires every student route onto mux.
//
//	POST   /api/students          → create a new student
//	GET    /api/students          → list all students
//	GET    /api/students/search   → filter students
//	GET    /api/students/{id}     → get one student by ID
//	PUT    /api/students/{id}     → replace every field of a student
//	PATCH  /api/students/{id}     → update only the supplied fields
//	DELETE /api/students/{id}     → delete a student
func Register(mux *http.ServeMux, storage storage.Storage) {
	mux.HandleFunc("POST /api/students", New(storage))
	mux.HandleFunc("GET /api/students", GetList(storage))
	mux.HandleFunc("GET /api/students/search", Search(storage))
	mux.HandleFunc("GET /api/students/{id}", GetByID(storage))
	mux.HandleFunc("PUT /api/students/{id}", Update(storage))
	mux.HandleFunc("PATCH /api/students/{id}", Patch(storage))
	mux.HandleFunc("DELETE /api/students/{id}", Delete(storage))
}

var errEmptyBody = errors.New("request body is empty")

func notFound(id int64) error {
	return fmt.Errorf("no student found with id: %d", id)
}

// decodeBody decodes the JSON request body into v. An empty body is
// reported as errEmptyBody.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// pathID parses the {id} segment. On failure it writes the 400 response
// and returns ok=false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := types.ParseID(r.PathValue("id"))
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(err.Error()))
		return 0, false
	}
	return id, true
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body (JSON), email and notes optional:
//
//	{ "name": "Ann", "age": 20, "grade": "10", "email": "ann@test.com", "gpa": 3.5 }
//
// Success response (201 Created): the stored student including its new id.
// Any "id" in the body is ignored.
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var student types.Student
		if err := decodeBody(r, &student); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student = student.Normalize()
		if ok, msg := types.ValidateStudent(student); !ok {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(msg))
			return
		}

		created, err := storage.CreateStudent(student)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("student created", slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/students/{id}
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting a student", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		student, found, err := storage.GetStudentByID(id)
		if err != nil {
			slog.Error("error getting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if !found {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(notFound(id)))
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/students
// Returns an empty array [] (not null) when there are no students.
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents()
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Search handles GET /api/students/search
//
// Query parameters, all optional and combined with AND:
//
//	keyword   name substring (case-insensitive) or exact id
//	grade     exact grade (case-insensitive)
//	min_age, max_age, min_gpa, max_gpa   inclusive bounds
//
// A bound that is present but not a number is a 400. An absent bound is
// no constraint; min_age=0 is a real bound.
// ─────────────────────────────────────────────────────────────────────────────
func Search(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		criteria, err := criteriaFromQuery(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(err.Error()))
			return
		}

		slog.Info("searching students", slog.String("query", r.URL.RawQuery))

		students, err := storage.SearchStudents(criteria)
		if err != nil {
			slog.Error("error searching students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

func criteriaFromQuery(r *http.Request) (types.Criteria, error) {
	q := r.URL.Query()
	c := types.Criteria{
		Keyword: q.Get("keyword"),
		Grade:   q.Get("grade"),
	}

	for _, p := range []struct {
		key string
		dst **int
	}{{"min_age", &c.MinAge}, {"max_age", &c.MaxAge}} {
		if !q.Has(p.key) {
			continue
		}
		v, err := types.ParseAge(q.Get(p.key))
		if err != nil {
			return types.Criteria{}, fmt.Errorf("%s must be an integer", p.key)
		}
		*p.dst = &v
	}

	for _, p := range []struct {
		key string
		dst **float64
	}{{"min_gpa", &c.MinGPA}, {"max_gpa", &c.MaxGPA}} {
		if !q.Has(p.key) {
			continue
		}
		v, err := types.ParseGPA(q.Get(p.key))
		if err != nil {
			return types.Criteria{}, fmt.Errorf("%s must be a number", p.key)
		}
		*p.dst = &v
	}

	return c, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
// Replaces ALL fields of an existing student; omitted email/notes become
// null. The id in the path wins over any id in the body.
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("updating a student", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var student types.Student
		if err := decodeBody(r, &student); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		student = student.Normalize()
		if ok, msg := types.ValidateStudent(student); !ok {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(msg))
			return
		}

		writeUpdate(w, storage, id, types.ReplaceWith(student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /api/students/{id}
// Only the keys present in the body change; "email": null clears the
// email. The merged record must still pass validation.
//
//	{ "gpa": 3.9 }
//
// ─────────────────────────────────────────────────────────────────────────────
func Patch(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("patching a student", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var fields map[string]any
		if err := decodeBody(r, &fields); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		patch, err := types.PatchFromMap(fields)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		patch = patch.Normalize()

		current, found, err := storage.GetStudentByID(id)
		if err != nil {
			slog.Error("error getting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if !found {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(notFound(id)))
			return
		}

		if ok, msg := types.ValidateStudent(patch.Apply(current)); !ok {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(msg))
			return
		}

		writeUpdate(w, storage, id, patch)
	}
}

func writeUpdate(w http.ResponseWriter, storage storage.Storage, id int64, patch types.StudentPatch) {
	updated, found, err := storage.UpdateStudentByID(id, patch)
	if err != nil {
		slog.Error("error updating student",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
		return
	}
	if !found {
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(notFound(id)))
		return
	}

	slog.Info("student updated", slog.Int64("id", id))
	response.WriteJSON(w, http.StatusOK, updated)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("deleting a student", slog.String("id", r.PathValue("id")))

		id, ok := pathID(w, r)
		if !ok {
			return
		}

		removed, err := storage.DeleteStudentByID(id)
		if err != nil {
			slog.Error("error deleting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if !removed {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(notFound(id)))
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

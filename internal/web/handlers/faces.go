package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/nccpresi/attendance-backend/internal/constants"
	"github.com/nccpresi/attendance-backend/internal/recognizer"
)

// Extractor produces face encodings from a photo on disk.
type Extractor interface {
	Extract(ctx context.Context, path string) ([][]float32, error)
}

// FaceRegistry is the registered-encodings set the handlers write to.
type FaceRegistry interface {
	Add(name, regNo string, encoding []float32) error
	Count() int
}

// Matcher finds the registered face nearest to a query encoding.
type Matcher interface {
	Match(query []float32) recognizer.Result
}

// FacesHandler serves face registration and recognition.
type FacesHandler struct {
	registry  FaceRegistry
	matcher   Matcher
	extractor Extractor
	queue     *ArchiveQueue
}

func NewFacesHandler(registry FaceRegistry, matcher Matcher, extractor Extractor, queue *ArchiveQueue) *FacesHandler {
	return &FacesHandler{
		registry:  registry,
		matcher:   matcher,
		extractor: extractor,
		queue:     queue,
	}
}

// Register handles POST /register. Expects multipart fields name,
// regimental_number and file; exactly one face must be in the photo.
func (h *FacesHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	name := r.FormValue("name")
	regNo := r.FormValue("regimental_number")
	if name == "" || regNo == "" {
		respondError(w, http.StatusBadRequest, "name and regimental_number are required")
		return
	}

	path, err := stageUpload(r, "register-*.jpg")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(path)

	encodings, err := h.extractor.Extract(r.Context(), path)
	if err != nil {
		log.Printf("could not extract encodings: %v", err)
		respondError(w, http.StatusInternalServerError, "face extraction failed")
		return
	}
	if len(encodings) == 0 {
		respondError(w, http.StatusBadRequest, "No face found in image")
		return
	}

	// Only the first detected face counts, here and in Recognize.
	if err := h.registry.Add(name, regNo, encodings[0]); err != nil {
		log.Printf("could not register %s: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "could not persist registration")
		return
	}

	log.Printf("registered face for %s (%s)", sanitizeForLog(name), sanitizeForLog(regNo))
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Successfully registered %s (%s)", name, regNo),
	})
}

// recognizeResponse is the POST /recognize payload. AlreadyMarked is
// always false here; the attendance ledger is the authority and reports
// duplicates itself.
type recognizeResponse struct {
	Name          string `json:"name"`
	RegNo         string `json:"reg_no"`
	Match         bool   `json:"match"`
	AlreadyMarked bool   `json:"already_marked"`
	Detail        string `json:"detail,omitempty"`
}

// Recognize handles POST /recognize. Matches the first detected face
// against the registry and archives the photo in the background.
func (h *FacesHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if h.registry.Count() == 0 {
		respondJSON(w, http.StatusOK, recognizeResponse{
			Name:   recognizer.UnknownName,
			Detail: "No registered faces",
		})
		return
	}

	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	path, err := stageUpload(r, "recognize-*.jpg")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	encodings, err := h.extractor.Extract(r.Context(), path)
	if err != nil {
		os.Remove(path)
		log.Printf("could not extract encodings: %v", err)
		respondError(w, http.StatusInternalServerError, "face extraction failed")
		return
	}
	if len(encodings) == 0 {
		os.Remove(path)
		respondJSON(w, http.StatusOK, recognizeResponse{
			Name:   recognizer.UnknownName,
			Detail: "No face detected",
		})
		return
	}

	result := h.matcher.Match(encodings[0])

	// The queue owns the temp file from here; it is deleted after the
	// upload attempt.
	photoName := fmt.Sprintf("%s_%s.jpg", result.Name, time.Now().Format("15-04-05"))
	h.queue.Enqueue(path, photoName)

	respondJSON(w, http.StatusOK, recognizeResponse{
		Name:  result.Name,
		RegNo: result.RegNo,
		Match: result.Matched,
	})
}

// stageUpload copies the multipart "file" part to a temp file and
// returns its path. The caller owns the file.
func stageUpload(r *http.Request, pattern string) (string, error) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("file field is required")
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("could not stage upload")
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("could not stage upload")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("could not stage upload")
	}
	return tmp.Name(), nil
}

package handlers

import (
	"Sidekick/internal/model"
	"Sidekick/internal/service"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DocumentHandler — CRUD документов /docdb/{type}/documents, отзывы и теги.
// Доступ к конкретному документу проверяется через service.Authorize.
type DocumentHandler struct {
	DocumentService *service.DocumentService
	UserService     *service.UserService
	Logger          *zap.SugaredLogger
}

func NewDocumentHandler(docs *service.DocumentService, users *service.UserService, logger *zap.SugaredLogger) *DocumentHandler {
	return &DocumentHandler{DocumentService: docs, UserService: users, Logger: logger}
}

// updateDocumentRequest повторяет форму документа в ответе.
type updateDocumentRequest struct {
	Metadata struct {
		Name       string          `json:"name"`
		Tags       []string        `json:"tags"`
		Properties json.RawMessage `json:"properties"`
	} `json:"metadata"`
	Content json.RawMessage `json:"content"`
}

type feedbackRequest struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// List — метаданные документов типа текущего пользователя.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	res, err := h.DocumentService.List(r.Context(), chi.URLParam(r, "type"), userID)
	if err != nil {
		writeError(w, h.Logger, r, "ListDocuments", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Create создаёт документ текущего пользователя.
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in service.DocumentInput
	if !decodeBody(w, r, h.Logger, "CreateDocument", &in) {
		return
	}
	doc, err := h.DocumentService.Create(r.Context(), userID, chi.URLParam(r, "type"), in)
	if err != nil {
		writeError(w, h.Logger, r, "CreateDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, service.AccessRead)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Update полностью заменяет имя, теги, свойства и содержимое.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, service.AccessWrite)
	if !ok {
		return
	}
	var req updateDocumentRequest
	if !decodeBody(w, r, h.Logger, "UpdateDocument", &req) {
		return
	}
	updated, err := h.DocumentService.Update(r.Context(), doc.Metadata.ID, service.DocumentInput{
		Name:       req.Metadata.Name,
		Tags:       req.Metadata.Tags,
		Properties: req.Metadata.Properties,
		Content:    req.Content,
	})
	if err != nil {
		writeError(w, h.Logger, r, "UpdateDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DocumentHandler) Rename(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, service.AccessWrite)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, h.Logger, "RenameDocument", &req) {
		return
	}
	updated, err := h.DocumentService.UpdateName(r.Context(), doc.Metadata.ID, req.Name)
	if err != nil {
		writeError(w, h.Logger, r, "RenameDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DocumentHandler) Move(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, service.AccessWrite)
	if !ok {
		return
	}
	var req struct {
		Type string `json:"type"`
	}
	if !decodeBody(w, r, h.Logger, "MoveDocument", &req) {
		return
	}
	updated, err := h.DocumentService.UpdateType(r.Context(), doc.Metadata.ID, req.Type)
	if err != nil {
		writeError(w, h.Logger, r, "MoveDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *DocumentHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, service.AccessWrite)
	if !ok {
		return
	}
	var req struct {
		Visibility string `json:"visibility"`
	}
	if !decodeBody(w, r, h.Logger, "SetVisibility", &req) {
		return
	}
	updated, err := h.DocumentService.UpdateVisibility(r.Context(), doc.Metadata.ID, req.Visibility)
	if err != nil {
		writeError(w, h.Logger, r, "SetVisibility", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete удаляет документ и возвращает его последнее состояние.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.load(w, r, service.AccessWrite)
	if !ok {
		return
	}
	deleted, err := h.DocumentService.Delete(r.Context(), doc.Metadata.ID)
	if err != nil {
		writeError(w, h.Logger, r, "DeleteDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, deleted)
}

// load читает документ из URL и проверяет доступ текущего пользователя.
func (h *DocumentHandler) load(w http.ResponseWriter, r *http.Request, access service.Access) (*model.DocumentView, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	id := chi.URLParam(r, "id")
	doc, err := h.DocumentService.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, r, "LoadDocument", err)
		return nil, false
	}
	if err := service.Authorize(userID, doc.Metadata, access); err != nil {
		h.Logger.Warnw("document access denied", "user_id", userID, "document_id", id, "owner", doc.Metadata.UserID)
		writeError(w, h.Logger, r, "LoadDocument", err)
		return nil, false
	}
	return doc, true
}

// CreateFeedback сохраняет отзыв как документ типа feedback.
func (h *DocumentHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req feedbackRequest
	if !decodeBody(w, r, h.Logger, "Feedback", &req) {
		return
	}
	content, _ := json.Marshal(map[string]string{"feedback": req.Text})
	_, err := h.DocumentService.Create(r.Context(), userID, model.TypeFeedback, service.DocumentInput{
		Name:       fmt.Sprintf("Feedback %s", time.Now().Format("20060102150405")),
		Tags:       []string{req.Type},
		Properties: json.RawMessage(`{"status":"new"}`),
		Content:    content,
	})
	if err != nil {
		writeError(w, h.Logger, r, "Feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, Result{Success: true, Message: "Feedback submitted successfully"})
}

// ListFeedback — все отзывы всех пользователей, только для администратора.
func (h *DocumentHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if !h.UserService.IsAdmin(r.Context(), userID) {
		writeJSON(w, http.StatusForbidden, Result{Success: false, Message: "Only admins can view feedback."})
		return
	}
	res, err := h.DocumentService.List(r.Context(), model.TypeFeedback, "")
	if err != nil {
		writeError(w, h.Logger, r, "ListFeedback", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UserTags — словарь тегов текущего пользователя.
func (h *DocumentHandler) UserTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	tags, err := h.DocumentService.UserTags(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, r, "UserTags", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

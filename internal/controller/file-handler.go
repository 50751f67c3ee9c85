package controller

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/renderroom/server/internal/service/room"
	"github.com/renderroom/server/pkg/rest"
)

func (c controller) uploadBlendFile(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "no file part"})
		return
	}
	defer file.Close()

	resp, err := c.roomService.AddBlendFile(r.Context(), &room.AddBlendFileParams{
		RoomId:   chi.URLParam(r, "room-id"),
		FileName: header.Filename,
		Src:      file,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type:    "FILE_ADDED",
		Payload: resp.File,
	})

	rest.WriteJSON(w, http.StatusCreated, rest.Envelope{"data": resp.File})
}

func (c controller) removeBlendFile(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "file-name")

	resp, err := c.roomService.RemoveBlendFile(r.Context(), &room.RemoveBlendFileParams{
		RoomId:   chi.URLParam(r, "room-id"),
		FileName: fileName,
	})
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	c.broadcast(r.Context(), resp.Conns, &Output{
		Type:    "FILE_REMOVED",
		Payload: map[string]any{"file_name": fileName},
	})

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"message": "file removed"})
}

func (c controller) listBlendFiles(w http.ResponseWriter, r *http.Request) {
	names, err := c.roomService.ListBlendFiles(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": names})
}

func (c controller) downloadBlendFile(w http.ResponseWriter, r *http.Request) {
	src, err := c.roomService.OpenBlendFile(r.Context(), chi.URLParam(r, "room-id"), chi.URLParam(r, "file-name"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	defer src.Close()

	c.sendFile(w, chi.URLParam(r, "file-name"), src)
}

func (c controller) listFinalFiles(w http.ResponseWriter, r *http.Request) {
	names, err := c.roomService.ListFinalFiles(r.Context(), chi.URLParam(r, "room-id"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"data": names})
}

func (c controller) downloadFinalFile(w http.ResponseWriter, r *http.Request) {
	src, err := c.roomService.OpenFinalFile(r.Context(), chi.URLParam(r, "room-id"), chi.URLParam(r, "file-name"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	defer src.Close()

	c.sendFile(w, chi.URLParam(r, "file-name"), src)
}

func (c controller) sendFile(w http.ResponseWriter, name string, src io.Reader) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	io.Copy(w, src)
}

package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	repo "github.com/renderroom/server/internal/repository/room"
	"github.com/renderroom/server/internal/service/room"
)

// apiClient talks to the coordinator's REST API.
type apiClient struct {
	httpClient *http.Client
	baseURL    string
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: baseURL,
	}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s", method, path, env.Error)
	}

	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}

	return nil
}

func (c *apiClient) JoinRoom(ctx context.Context, roomId, clientId string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/rooms/"+url.PathEscape(roomId)+"/join",
		map[string]string{"client_id": clientId}, nil)
}

func (c *apiClient) GetRoomStatus(ctx context.Context, roomId string) (room.RoomStatusResponse, error) {
	var status room.RoomStatusResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/rooms/"+url.PathEscape(roomId)+"/status", nil, &status)
	return status, err
}

func (c *apiClient) GetNextTask(ctx context.Context, roomId, clientId string) (*repo.Task, error) {
	var task *repo.Task
	err := c.do(ctx, http.MethodGet,
		"/api/v1/rooms/"+url.PathEscape(roomId)+"/tasks/next?client_id="+url.QueryEscape(clientId), nil, &task)
	return task, err
}

func (c *apiClient) UpdateTask(ctx context.Context, roomId, taskId string, status repo.TaskStatus, clientId string) error {
	return c.do(ctx, http.MethodPatch,
		"/api/v1/rooms/"+url.PathEscape(roomId)+"/tasks/"+url.PathEscape(taskId),
		map[string]string{"status": string(status), "client_id": clientId}, nil)
}

func (c *apiClient) AppendFrameLog(ctx context.Context, roomId string, entry repo.FrameLogEntry) error {
	return c.do(ctx, http.MethodPost, "/api/v1/rooms/"+url.PathEscape(roomId)+"/renderlog",
		map[string]any{
			"frame":      entry.Frame,
			"task_id":    entry.TaskId,
			"client_id":  entry.Client,
			"blend_file": entry.BlendFile,
		}, nil)
}

// DownloadBlendFile fetches the blend file into destDir and returns its path.
func (c *apiClient) DownloadBlendFile(ctx context.Context, roomId, fileName, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v1/rooms/"+url.PathEscape(roomId)+"/files/"+url.PathEscape(fileName), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: status %d", fileName, resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	destPath := filepath.Join(destDir, filepath.Base(fileName))
	f, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", err
	}

	return destPath, nil
}

// UploadResult posts a rendered output file into the task's staging area.
func (c *apiClient) UploadResult(ctx context.Context, roomId, taskId, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/rooms/"+url.PathEscape(roomId)+"/tasks/"+url.PathEscape(taskId)+"/results", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to upload %s: status %d", filePath, resp.StatusCode)
	}

	return nil
}

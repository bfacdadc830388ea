package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// GenericErrorMessage is shown when the backend gives no usable message
const GenericErrorMessage = "Something went wrong"

// NetworkErrorMessage is shown when the backend could not be reached
const NetworkErrorMessage = "Network request failed"

// APIError is a failed backend call, reduced to a message a screen can show
type APIError struct {
	Status  int // 0 when no response arrived
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Message extracts the user-facing message from any error returned by the client
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return GenericErrorMessage
}

// Client calls the marketplace backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for baseURL, e.g. "http://localhost:8080/api/v1"
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewWithHTTPClient is New with a caller-supplied http.Client
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: hc}
}

// Request sends body as JSON and decodes the JSON response into out (if non-nil).
// A non-empty token is sent as a bearer credential.
func (c *Client) Request(ctx context.Context, path, method string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	return c.do(req, out)
}

// FormFile is one file part of a multipart form
type FormFile struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Form is an ordered multipart form
type Form struct {
	fields [][2]string
	files  []FormFile
}

// Add appends a text field
func (f *Form) Add(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// AddFile appends a file part
func (f *Form) AddFile(file FormFile) *Form {
	f.files = append(f.files, file)
	return f
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, field := range f.fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(file.Field), escapeQuotes(file.Filename)))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// RequestMultipart sends form as multipart/form-data. No JSON content type is applied;
// the only Content-Type is the one carrying the multipart boundary.
func (c *Client) RequestMultipart(ctx context.Context, path, method string, form *Form, token string, out any) error {
	if form == nil {
		form = &Form{}
	}
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("failed to encode multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	setBearer(req, token)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: NetworkErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Message: NetworkErrorMessage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(raw),
			Err:     fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode),
		}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: GenericErrorMessage, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || strings.TrimSpace(body.Message) == "" {
		return GenericErrorMessage
	}
	return body.Message
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

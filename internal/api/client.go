// Package api talks to the cooling daemon's HTTP API: it logs in, finds
// the LCD device, polls sensor status and uploads rendered frames.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/luki/sensorlcd/internal/logging"
)

var logger = logging.New("api")

// Client is a session with the daemon. It is safe for use by one driver
// loop at a time.
type Client struct {
	base     string
	username string
	password string
	http     *http.Client
	loggedIn bool
}

// NewClient creates a client for the daemon at base (e.g.
// "http://localhost:11987").
func NewClient(base, username, password string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		base:     strings.TrimRight(base, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: timeout, Jar: jar},
	}
}

// Login opens a session. Later calls log in lazily when needed.
func (c *Client) Login(ctx context.Context) error {
	req, errGo := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/login", nil)
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	req.SetBasicAuth(c.username, c.password)
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	c.loggedIn = true
	logger.Debug("logged in", "address", c.base)
	return nil
}

func (c *Client) ensureSession(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	return c.Login(ctx)
}

// do sends req and turns non-2xx responses into errors. The caller closes
// the body of a successful response.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, errGo := c.http.Do(req)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("url", req.URL.String()).With("stack", stack.Trace().TrimRuntime())
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized {
			c.loggedIn = false
		}
		return nil, errors.New(fmt.Sprintf("%s %s: %s", req.Method, req.URL.Path, resp.Status)).
			With("body", string(body)).With("stack", stack.Trace().TrimRuntime())
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}
	req, errGo := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if errGo := json.NewDecoder(resp.Body).Decode(out); errGo != nil {
		return errors.Wrap(errGo).With("path", path).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

// Upload sends one encoded frame to the device's LCD channel.
func (c *Client) Upload(ctx context.Context, deviceUID string, frame []byte, contentType string, brightness, orientation int) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := [][2]string{
		{"mode", "image"},
		{"brightness", strconv.Itoa(brightness)},
		{"orientation", strconv.Itoa(orientation)},
	}
	for _, f := range fields {
		if errGo := mw.WriteField(f[0], f[1]); errGo != nil {
			return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="images[]"; filename="frame"`)
	h.Set("Content-Type", contentType)
	part, errGo := mw.CreatePart(h)
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	if _, errGo = part.Write(frame); errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	if errGo = mw.Close(); errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}

	url := fmt.Sprintf("%s/devices/%s/settings/lcd/lcd/images?log=false", c.base, deviceUID)
	req, errGo := http.NewRequestWithContext(ctx, http.MethodPut, url, &body)
	if errGo != nil {
		return errors.Wrap(errGo).With("stack", stack.Trace().TrimRuntime())
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

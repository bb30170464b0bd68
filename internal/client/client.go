package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkguid"
	"golang.org/x/sync/errgroup"
)

// ErrUnauthorized is returned for any 401. The saved token is dropped.
var ErrUnauthorized = errors.New("session expired, please login again")

// ErrForbidden is returned for any 403. The token stays valid for the
// endpoints the account may use.
var ErrForbidden = errors.New("permission denied, login again with a staff account")

// ErrNotLoggedIn is returned before a request is made when no token is saved.
var ErrNotLoggedIn = errors.New("not logged in, run chemctl login first")

// APIError is a non-success response from the service.
type APIError struct {
	Status        int
	Message       string
	CorrelationID string
}

// Error returns the server's message. Server-side failures also carry the
// correlation id to look up in the service logs.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", e.Status)
	}
	if e.Status >= http.StatusInternalServerError && e.CorrelationID != "" {
		msg += " (correlation id " + e.CorrelationID + ")"
	}
	return msg
}

type Options struct {
	BaseURL string
	Tokens  TokenStore
	HTTP    *http.Client
	Runner  *pkgroutine.Manager
}

// Client talks to the chemvis service.
type Client struct {
	base   *url.URL
	tokens TokenStore
	http   *http.Client
	runner *pkgroutine.Manager
	ids    pkguid.StringID
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", opts.BaseURL)
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}

	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}

	runner := opts.Runner
	if runner == nil {
		runner = pkgroutine.NewManager(4)
	}

	return &Client{base: base, tokens: tokens, http: hc, runner: runner, ids: pkguid.NewUUID()}, nil
}

// Login exchanges credentials for a token and saves it.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return Session{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "login/", bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var session Session
	if _, err := c.send(req, &session); err != nil {
		return Session{}, err
	}

	if err := c.tokens.Save(session.Token); err != nil {
		return Session{}, err
	}

	return session, nil
}

func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Upload sends the CSV at path as the multipart field "file".
func (c *Client) Upload(ctx context.Context, path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dataset{}, err
	}
	defer f.Close()

	req, err := c.newAuthedRequest(ctx, http.MethodPost, "upload/", nil)
	if err != nil {
		return Dataset{}, err
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	done := make(chan struct{})

	// The pipe only drains while the request is being sent, so the form is
	// written on its own goroutine. done joins it before Upload returns.
	go func() {
		defer close(done)
		part, err := form.CreateFormFile("file", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = form.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req.Body = pr
	req.GetBody = nil
	req.ContentLength = -1
	req.Header.Set("Content-Type", form.FormDataContentType())

	var ds Dataset
	_, err = c.send(req, &ds)
	_ = pr.Close()
	<-done
	if err != nil {
		return Dataset{}, err
	}

	return ds, nil
}

// UploadAsync runs Upload in the background and delivers the single result
// on the returned channel.
func (c *Client) UploadAsync(ctx context.Context, path string) <-chan pkgroutine.Outcome[Dataset] {
	return pkgroutine.Async(c.runner, ctx, func(ctx context.Context) (Dataset, error) {
		return c.Upload(ctx, path)
	})
}

func (c *Client) History(ctx context.Context, page, pageSize int) (History, error) {
	req, err := c.newAuthedRequest(ctx, http.MethodGet, "history/"+pageQuery(page, pageSize), nil)
	if err != nil {
		return History{}, err
	}

	var data struct {
		Results []Dataset `json:"results"`
	}
	meta, err := c.send(req, &data)
	if err != nil {
		return History{}, err
	}

	return History{Datasets: data.Results, Page: meta}, nil
}

func (c *Client) Dataset(ctx context.Context, id int64, page, pageSize int) (DatasetDetail, error) {
	req, err := c.newAuthedRequest(ctx, http.MethodGet, datasetPath(id, "")+pageQuery(page, pageSize), nil)
	if err != nil {
		return DatasetDetail{}, err
	}

	var detail DatasetDetail
	meta, err := c.send(req, &detail)
	if err != nil {
		return DatasetDetail{}, err
	}
	detail.Page = meta

	return detail, nil
}

func (c *Client) Summary(ctx context.Context, id int64) (Summary, error) {
	req, err := c.newAuthedRequest(ctx, http.MethodGet, datasetPath(id, "summary/"), nil)
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	if _, err := c.send(req, &s); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	req, err := c.newAuthedRequest(ctx, http.MethodDelete, datasetPath(id, ""), nil)
	if err != nil {
		return err
	}
	_, err = c.send(req, nil)
	return err
}

// Show loads the dataset metadata and its first page of records together.
// Filename and upload time come from history.
func (c *Client) Show(ctx context.Context, id int64, pageSize int) (Dashboard, error) {
	var (
		dash  Dashboard
		found bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := c.History(gctx, 1, 100)
		if err != nil {
			return err
		}
		for _, ds := range h.Datasets {
			if ds.ID == id {
				dash.Dataset = ds
				found = true
			}
		}
		return nil
	})
	g.Go(func() error {
		detail, err := c.Dataset(gctx, id, 1, pageSize)
		if err != nil {
			return err
		}
		dash.Detail = detail
		return nil
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	if !found {
		dash.Dataset = Dataset{ID: id, SummaryStats: dash.Detail.Summary, RecordCount: dash.Detail.Summary.Count}
	}

	return dash, nil
}

// Report streams the dataset's PDF into w and returns the server's filename.
func (c *Client) Report(ctx context.Context, id int64, w io.Writer) (string, error) {
	req, err := c.newAuthedRequest(ctx, http.MethodGet, datasetPath(id, "report/"), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.decodeError(resp)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("download report: %w", err)
	}

	name := fmt.Sprintf("report_%d.pdf", id)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = filepath.Base(params["filename"])
	}

	return name, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(pkgrouter.HeaderCorrelationID, c.ids.Generate())
	return req, nil
}

func (c *Client) newAuthedRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	token, err := c.tokens.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotLoggedIn
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+token)

	return req, nil
}

// send performs req and decodes the envelope's data into out and its
// pagination meta.
func (c *Client) send(req *http.Request, out any) (Page, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, c.decodeError(resp)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return Page{}, nil
	}

	var env struct {
		Data json.RawMessage `json:"data"`
		Meta Page            `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Page{}, fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return Page{}, fmt.Errorf("decode response data: %w", err)
	}

	return env.Meta, nil
}

func (c *Client) decodeError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		_ = c.tokens.Clear()
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}

	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)

	return &APIError{
		Status:        resp.StatusCode,
		Message:       body.Message,
		CorrelationID: resp.Header.Get(pkgrouter.HeaderCorrelationID),
	}
}

func datasetPath(id int64, suffix string) string {
	return "dataset/" + strconv.FormatInt(id, 10) + "/" + suffix
}

func pageQuery(page, pageSize int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

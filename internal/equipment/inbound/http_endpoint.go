package inbound

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shandysiswandi/chemvis/internal/equipment/usecase"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	part, err := extractFilePart(r)
	if err != nil {
		return nil, bodyErr(err)
	}
	defer func() { _ = part.Close() }()

	ds, err := h.uc.Upload(ctx, usecase.UploadInput{Filename: part.FileName(), Body: part})
	if err != nil {
		return nil, bodyErr(err)
	}

	return UploadResponse{Dataset: toHTTPDataset(ds)}, nil
}

func (h *HTTPEndpoint) History(ctx context.Context, r *http.Request) (any, error) {
	query := r.URL.Query()
	page, pageSize, err := parsePagination(query.Get("page"), query.Get("page_size"))
	if err != nil {
		return nil, err
	}

	result, err := h.uc.History(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	datasets := make([]Dataset, 0, len(result.Datasets))
	for _, ds := range result.Datasets {
		datasets = append(datasets, toHTTPDataset(ds))
	}

	return HistoryResponse{Results: datasets, page: result.Page}, nil
}

func (h *HTTPEndpoint) Records(ctx context.Context, r *http.Request) (any, error) {
	id, err := pkgrouter.GetParamID(ctx, "id", "dataset")
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()
	page, pageSize, err := parsePagination(query.Get("page"), query.Get("page_size"))
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Records(ctx, id, page, pageSize)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(result.Records))
	for _, rec := range result.Records {
		records = append(records, toHTTPRecord(rec))
	}

	return RecordsResponse{
		Records: records,
		Summary: result.Dataset.Summary,
		page:    result.Page,
	}, nil
}

func (h *HTTPEndpoint) Summary(ctx context.Context, r *http.Request) (any, error) {
	id, err := pkgrouter.GetParamID(ctx, "id", "dataset")
	if err != nil {
		return nil, err
	}

	return h.uc.Summary(ctx, id)
}

func (h *HTTPEndpoint) Report(ctx context.Context, r *http.Request) (any, error) {
	id, err := pkgrouter.GetParamID(ctx, "id", "dataset")
	if err != nil {
		return nil, err
	}

	result, err := h.uc.Report(ctx, id)
	if err != nil {
		return nil, err
	}

	return &pkgrouter.File{
		Name:        result.Filename,
		ContentType: "application/pdf",
		Body:        result.Content,
	}, nil
}

func (h *HTTPEndpoint) Delete(ctx context.Context, r *http.Request) (any, error) {
	id, err := pkgrouter.GetParamID(ctx, "id", "dataset")
	if err != nil {
		return nil, err
	}

	if err := h.uc.Delete(ctx, id); err != nil {
		return nil, err
	}

	return DeleteResponse{}, nil
}

func parsePagination(pageRaw, sizeRaw string) (int, int, error) {
	page := 1
	pageSize := defaultPageSize

	if pageRaw != "" {
		value, err := strconv.Atoi(pageRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page"))
		}
		page = value
	}

	if sizeRaw != "" {
		value, err := strconv.Atoi(sizeRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page_size"))
		}
		if value > maxPageSize {
			value = maxPageSize
		}
		pageSize = value
	}

	return page, pageSize, nil
}

// extractFilePart streams the multipart field "file" without buffering the
// whole form.
func extractFilePart(r *http.Request) (*multipart.Part, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.EqualFold(mediaType, "multipart/form-data") {
		return nil, pkgerror.NewRejected("no file provided")
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, pkgerror.NewRejected("no file provided")
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, err
			}
			return nil, pkgerror.NewInvalidFormat()
		}

		if part.FormName() == "file" {
			return part, nil
		}
		_ = part.Close()
	}
}

// bodyErr reports an oversized body as 413 no matter which layer hit the
// limit first.
func bodyErr(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return pkgerror.NewTooLarge(mbe.Limit)
	}
	return err
}

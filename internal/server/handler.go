package server

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	kratoshttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/go-tangra/go-tangra-memdev/internal/codec"
	"github.com/go-tangra/go-tangra-memdev/internal/collector"
	"github.com/go-tangra/go-tangra-memdev/internal/store"
)

// Handler serves the snapshot REST API.
type Handler struct {
	store *store.Store
}

// NewHandler creates a handler backed by the given store.
func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// RegisterRoutes mounts the snapshot API under /api/v1.
func (h *Handler) RegisterRoutes(srv *kratoshttp.Server) {
	r := srv.Route("/api/v1")
	r.POST("/snapshots", h.SubmitSnapshot)
	r.GET("/snapshots", h.ListSnapshots)
	r.GET("/snapshots/{id}", h.GetSnapshot)
	r.DELETE("/snapshots/{id}", h.DeleteSnapshot)
	r.GET("/hosts/{hostname}/latest", h.GetLatestSnapshot)
}

// SubmitResponse is returned for an accepted snapshot.
type SubmitResponse struct {
	ID       string    `json:"id"`
	StoredAt time.Time `json:"stored_at"`
}

// SnapshotSummary is one row of a snapshot listing.
type SnapshotSummary struct {
	ID           string    `json:"id"`
	Hostname     string    `json:"hostname"`
	Source       string    `json:"source"`
	Kernel       string    `json:"kernel,omitempty"`
	DeviceCount  int       `json:"device_count"`
	AvgFrequency uint64    `json:"avg_frequency_mts"`
	CollectedAt  time.Time `json:"collected_at"`
	StoredAt     time.Time `json:"stored_at"`
}

// ListResponse is a page of snapshot summaries.
type ListResponse struct {
	Snapshots []SnapshotSummary `json:"snapshots"`
	Total     int               `json:"total"`
}

// DeleteResponse acknowledges a deleted snapshot.
type DeleteResponse struct {
	ID string `json:"id"`
}

// SnapshotResponse carries one full snapshot.
type SnapshotResponse struct {
	ID       string              `json:"id"`
	Snapshot *collector.Snapshot `json:"snapshot"`
	StoredAt time.Time           `json:"stored_at"`
}

func (h *Handler) SubmitSnapshot(ctx kratoshttp.Context) error {
	var snap collector.Snapshot
	if err := ctx.Bind(&snap); err != nil {
		return kerrors.BadRequest("INVALID_BODY", err.Error())
	}
	if snap.Hostname == "" {
		return kerrors.BadRequest("INVALID_SNAPSHOT", "hostname is required")
	}
	if snap.Memory == nil {
		return kerrors.BadRequest("INVALID_SNAPSHOT", "memory inventory is required")
	}

	id, storedAt, err := h.store.Insert(ctx, &snap)
	if err != nil {
		return kerrors.InternalServer("STORE_SNAPSHOT", err.Error())
	}

	return ctx.Result(201, &SubmitResponse{ID: id, StoredAt: storedAt})
}

func (h *Handler) GetSnapshot(ctx kratoshttp.Context) error {
	id := ctx.Vars().Get("id")

	rec, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kerrors.NotFound("SNAPSHOT_NOT_FOUND", "snapshot "+id+" not found")
		}
		return kerrors.InternalServer("GET_SNAPSHOT", err.Error())
	}

	return ctx.Result(200, recordToResponse(rec))
}

func (h *Handler) GetLatestSnapshot(ctx kratoshttp.Context) error {
	hostname := ctx.Vars().Get("hostname")

	rec, err := h.store.GetLatestByHostname(ctx, hostname)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kerrors.NotFound("SNAPSHOT_NOT_FOUND", "no snapshot for host "+hostname)
		}
		return kerrors.InternalServer("GET_LATEST", err.Error())
	}

	return ctx.Result(200, recordToResponse(rec))
}

func (h *Handler) ListSnapshots(ctx kratoshttp.Context) error {
	q := ctx.Query()

	filter := store.ListFilter{
		Hostname: q.Get("hostname"),
		Source:   q.Get("source"),
	}
	if v := q.Get("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("page_size"); v != "" {
		filter.PageSize, _ = strconv.Atoi(v)
	}
	if v := q.Get("collected_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return kerrors.BadRequest("INVALID_FILTER", "collected_after: "+err.Error())
		}
		filter.CollectedAfter = &t
	}
	if v := q.Get("collected_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return kerrors.BadRequest("INVALID_FILTER", "collected_before: "+err.Error())
		}
		filter.CollectedBefore = &t
	}

	records, total, err := h.store.List(ctx, filter)
	if err != nil {
		return kerrors.InternalServer("LIST_SNAPSHOTS", err.Error())
	}

	resp := &ListResponse{Total: total, Snapshots: make([]SnapshotSummary, 0, len(records))}
	for _, rec := range records {
		resp.Snapshots = append(resp.Snapshots, SnapshotSummary{
			ID:           rec.UUID,
			Hostname:     rec.Hostname,
			Source:       rec.Source,
			Kernel:       rec.Kernel,
			DeviceCount:  rec.DeviceCount,
			AvgFrequency: rec.AvgFrequency,
			CollectedAt:  rec.CollectedAt,
			StoredAt:     rec.StoredAt,
		})
	}

	return ctx.Result(200, resp)
}

func (h *Handler) DeleteSnapshot(ctx kratoshttp.Context) error {
	id := ctx.Vars().Get("id")

	if err := h.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kerrors.NotFound("SNAPSHOT_NOT_FOUND", "snapshot "+id+" not found")
		}
		return kerrors.InternalServer("DELETE_SNAPSHOT", err.Error())
	}

	return ctx.Result(200, &DeleteResponse{ID: id})
}

func recordToResponse(rec *store.SnapshotRecord) *SnapshotResponse {
	resp := &SnapshotResponse{ID: rec.UUID, StoredAt: rec.StoredAt}

	// Stored JSON that no longer decodes is surfaced as an empty
	// snapshot rather than failing the read.
	if snap, err := codec.UnmarshalSnapshot([]byte(rec.SnapshotJSON)); err == nil {
		resp.Snapshot = snap
	}
	return resp
}

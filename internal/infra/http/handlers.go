package http

import (
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ervault/internal/domain"
	"ervault/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type batchRequest struct {
	Algorithm string           `json:"algorithm,omitempty"`
	Items     []batchItemInput `json:"items"`
}

type batchItemInput struct {
	ArtifactRef string `json:"artifact_ref,omitempty"`
	Digest      string `json:"digest"`
}

type renewalRequest struct {
	Algorithm string             `json:"algorithm"`
	Items     []renewalItemInput `json:"items"`
}

type renewalItemInput struct {
	RecordID string   `json:"record_id"`
	Digests  []string `json:"digests"`
}

type verifyRequest struct {
	Claims []claimInput `json:"claims"`
}

type claimInput struct {
	Digest    string `json:"digest"`
	Algorithm string `json:"algorithm"`
}

type recordResponse struct {
	ID              string                `json:"id"`
	ArtifactRef     string                `json:"artifact_ref,omitempty"`
	DigestAlgorithm string                `json:"digest_algorithm"`
	ChainLength     int                   `json:"chain_length"`
	Record          domain.EvidenceRecord `json:"record"`
	CreatedAt       string                `json:"created_at"`
	UpdatedAt       string                `json:"updated_at"`
}

type verifyResponse struct {
	RecordID     string                   `json:"record_id"`
	Verification usecase.VerifyResult     `json:"verification"`
	Policy       *domain.PolicyEvaluation `json:"policy,omitempty"`
}

func (s *Server) handleCreateBatch(c *gin.Context) {
	if !s.requireAdminKey(c) {
		return
	}
	if !s.allowRate(c) {
		return
	}
	if s.archiveUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store is not configured")
		return
	}
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "at least one item is required")
		return
	}
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = s.cfg.DefaultAlgorithm
	}
	items := make([]usecase.BatchItem, len(req.Items))
	for i, item := range req.Items {
		dgst, err := hex.DecodeString(item.Digest)
		if err != nil || len(dgst) == 0 {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_DIGEST", "digests must be non-empty hex strings")
			return
		}
		items[i] = usecase.BatchItem{ArtifactRef: item.ArtifactRef, Digest: dgst}
	}

	stored, err := s.archiveUC.Execute(c.Request.Context(), algorithm, items)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}
	out := make([]recordResponse, len(stored))
	for i, rec := range stored {
		out[i] = recordResponseFrom(rec)
	}
	c.JSON(http.StatusCreated, gin.H{"records": out})
}

func (s *Server) handleListRecords(c *gin.Context) {
	if !s.allowRate(c) {
		return
	}
	if s.records == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store is not configured")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	stored, err := s.records.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}
	out := make([]recordResponse, len(stored))
	for i, rec := range stored {
		out[i] = recordResponseFrom(rec)
	}
	c.JSON(http.StatusOK, gin.H{"records": out})
}

func (s *Server) handleGetRecord(c *gin.Context) {
	if !s.allowRate(c) {
		return
	}
	if s.records == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store is not configured")
		return
	}
	stored, err := s.records.Get(c.Request.Context(), c.Param("record_id"))
	if err != nil {
		writeUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordResponseFrom(stored))
}

func (s *Server) handleVerifyRecord(c *gin.Context) {
	if !s.allowRate(c) {
		return
	}
	if s.verifyUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store is not configured")
		return
	}
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	claims := make([]usecase.Claim, len(req.Claims))
	for i, claim := range req.Claims {
		dgst, err := hex.DecodeString(claim.Digest)
		if err != nil || len(dgst) == 0 {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_DIGEST", "claim digests must be non-empty hex strings")
			return
		}
		claims[i] = usecase.Claim{Digest: dgst, Algorithm: claim.Algorithm}
	}

	res, err := s.verifyUC.Execute(c.Request.Context(), c.Param("record_id"), claims)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, verifyResponse{
		RecordID:     res.Record.ID,
		Verification: res.Verification,
		Policy:       res.Policy,
	})
}

func (s *Server) handleRenewals(c *gin.Context) {
	if !s.requireAdminKey(c) {
		return
	}
	if !s.allowRate(c) {
		return
	}
	if s.renewUC == nil {
		writeErrorCode(c, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "record store is not configured")
		return
	}
	var req renewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	if req.Algorithm == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "algorithm is required")
		return
	}
	if len(req.Items) == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "at least one item is required")
		return
	}
	items := make([]usecase.StoredRenewalItem, len(req.Items))
	for i, item := range req.Items {
		if item.RecordID == "" {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "record_id is required")
			return
		}
		digests := make([][]byte, len(item.Digests))
		for j, raw := range item.Digests {
			dgst, err := hex.DecodeString(raw)
			if err != nil || len(dgst) == 0 {
				writeErrorCode(c, http.StatusBadRequest, "INVALID_DIGEST", "digests must be non-empty hex strings")
				return
			}
			digests[j] = dgst
		}
		items[i] = usecase.StoredRenewalItem{ID: item.RecordID, NewDigests: digests}
	}

	stored, err := s.renewUC.Execute(c.Request.Context(), items, req.Algorithm)
	if err != nil {
		writeUsecaseError(c, err)
		return
	}
	out := make([]recordResponse, len(stored))
	for i, rec := range stored {
		out[i] = recordResponseFrom(rec)
	}
	c.JSON(http.StatusOK, gin.H{"records": out})
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func recordResponseFrom(stored usecase.StoredRecord) recordResponse {
	return recordResponse{
		ID:              stored.ID,
		ArtifactRef:     stored.ArtifactRef,
		DigestAlgorithm: stored.Record.DigestAlgorithm,
		ChainLength:     len(stored.Record.Chain),
		Record:          stored.Record,
		CreatedAt:       stored.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       stored.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func writeUsecaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "record not found")
	case errors.Is(err, domain.ErrChainConflict):
		writeErrorCode(c, http.StatusConflict, "CONFLICT", "record chain was modified concurrently")
	case errors.Is(err, domain.ErrUnknownAlgorithm):
		writeErrorCode(c, http.StatusBadRequest, "UNKNOWN_ALGORITHM", "unsupported digest algorithm")
	case errors.Is(err, domain.ErrInvalidRecord):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_RECORD", "invalid evidence record")
	default:
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: message})
}

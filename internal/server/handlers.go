package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atlas-conseil/tenderflow/internal/common"
	"github.com/atlas-conseil/tenderflow/internal/model"
	"github.com/atlas-conseil/tenderflow/internal/normalize"
	"github.com/atlas-conseil/tenderflow/internal/service"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// saveTender runs the full pipeline on a raw field bag. Validation failures
// come back as 422 with the French violation messages; a clean run answers
// 201 for an insert and 200 for an update.
func (s *Server) saveTender(c *gin.Context) {
	var raw normalize.RawFields
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.engine.Process(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(result.Violations) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"violations": result.Violations,
			"record":     result.Record,
		})
		return
	}

	status := http.StatusOK
	if result.Saved.IsNew {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{
		"record":  result.Record,
		"created": result.Saved.IsNew,
	})
}

func (s *Server) listTenders(c *gin.Context) {
	if term := c.Query("q"); term != "" {
		records, err := s.storage.SearchTenders(c.Request.Context(), term)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenders": records})
		return
	}

	filter := service.TenderFilter{
		Status: c.Query("status"),
		Owner:  c.Query("owner"),
		Sector: c.Query("sector"),
		Region: c.Query("region"),
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filter.Offset = offset
	}

	records, err := s.storage.ListTenders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenders": records})
}

func (s *Server) getTender(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tender id"})
		return
	}

	rec, err := s.storage.GetTender(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) duplicateTender(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tender id"})
		return
	}

	var body struct {
		NewReference string `json:"new_reference"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.NewReference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new_reference is required"})
		return
	}

	source, err := s.storage.GetTender(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	clone, err := s.engine.Duplicate(c.Request.Context(), source.Key(), body.NewReference)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, clone)
}

func (s *Server) nextReference(c *gin.Context) {
	organization := c.Query("organization")
	if organization == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization is required"})
		return
	}

	year := 0
	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		year = parsed
	}

	reference, err := s.engine.NewReference(c.Request.Context(), organization, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": reference})
}

func (s *Server) options(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"regions":       model.Regions(),
		"sectors":       model.Sectors(),
		"team_members":  model.TeamMembers(),
		"statuses":      model.Statuses(),
		"decisions":     model.Decisions(),
		"mission_types": model.MissionTypes(),
	})
}

func (s *Server) dashboardStats(c *gin.Context) {
	stats, err := s.storage.DashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) statusDistribution(c *gin.Context) {
	s.distribution(c, s.storage.StatusDistribution)
}

func (s *Server) sectorDistribution(c *gin.Context) {
	s.distribution(c, s.storage.SectorDistribution)
}

func (s *Server) regionDistribution(c *gin.Context) {
	s.distribution(c, s.storage.RegionDistribution)
}

func (s *Server) rejectionReasons(c *gin.Context) {
	s.distribution(c, s.storage.RejectionReasons)
}

func (s *Server) monthlyCounts(c *gin.Context) {
	counts, err := s.storage.MonthlyCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"monthly": counts})
}

func (s *Server) amountByOrganization(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	amounts, err := s.storage.AmountByOrganization(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": amounts})
}

func (s *Server) ownerPerformance(c *gin.Context) {
	stats, err := s.storage.OwnerPerformance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"owners": stats})
}

// extract runs the field extraction over posted document text and answers
// with the candidate record plus the violations it would need fixed before
// saving. Nothing is written to the tenders table.
func (s *Server) extract(c *gin.Context) {
	if s.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no extraction provider configured"})
		return
	}

	var body struct {
		Source   string `json:"source"`
		Document string `json:"document"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.extractor.Run(c.Request.Context(), body.Source, body.Document)
	if err != nil {
		if errors.Is(err, common.ErrNoDocumentText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	rec, violations := s.engine.Prepare(result.Fields)
	c.JSON(http.StatusOK, gin.H{
		"fields":     result.Fields,
		"record":     rec,
		"violations": violations,
		"session_id": result.Run.SessionID,
	})
}

func (s *Server) recentExtractions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	runs, err := s.storage.RecentExtractions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"extractions": runs})
}

func (s *Server) distribution(c *gin.Context, query func(ctx context.Context) (map[string]int, error)) {
	counts, err := query(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

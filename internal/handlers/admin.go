package handlers

import (
	"log"
	"net/http"
	"strconv"

	"realty-catalog/internal/archive"
	"realty-catalog/internal/catalog"
	"realty-catalog/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	service   *catalog.Service
	archive   archive.Archive      // nil when archiving is disabled
	scheduler *scheduler.Scheduler // nil when archiving is disabled
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service *catalog.Service, arch archive.Archive, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{
		service:   service,
		archive:   arch,
		scheduler: sched,
	}
}

// GetStats returns catalog and archive statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := gin.H{
		"catalog": h.service.Stats(),
	}

	if h.archive != nil {
		archiveStats, err := h.archive.Stats()
		if err != nil {
			log.Printf("Admin: failed to get archive stats: %v", err)
		} else {
			stats["archive"] = archiveStats
		}
	}

	c.JSON(http.StatusOK, stats)
}

// RunSnapshot manually triggers the daily snapshot job
func (h *AdminHandler) RunSnapshot(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Snapshot job not available (archive backend required)",
		})
		return
	}

	log.Println("Admin: Manual snapshot trigger requested")

	// Run in goroutine to avoid blocking
	go func() {
		saved, failed := h.scheduler.RunNow()
		log.Printf("Admin: Manual snapshot completed: %d saved, %d failed", saved, failed)
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Snapshot job started",
		"status":  "running",
	})
}

// GetRecentChanges returns recently detected listing changes
func (h *AdminHandler) GetRecentChanges(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Change history not available (archive backend required)",
		})
		return
	}

	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	changes, err := h.archive.RecentChanges(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes": changes,
		"count":   len(changes),
	})
}

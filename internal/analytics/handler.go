package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castlane/backend/internal/studios"
	"github.com/castlane/backend/pkg/response"
)

// Handler handles GET /studios/:id/dashboard.
type Handler struct {
	pool *pgxpool.Pool
}

// NewHandler creates an analytics handler.
func NewHandler(pool *pgxpool.Pool) *Handler {
	return &Handler{pool: pool}
}

// DashboardResponse is the JSON shape for the studio dashboard.
type DashboardResponse struct {
	TotalProjects           int      `json:"total_projects"`
	CastingProjects         int      `json:"casting_projects"`
	InProductionProjects    int      `json:"in_production_projects"`
	ArchivedProjects        int      `json:"archived_projects"`
	OpenCastingCalls        int      `json:"open_casting_calls"`
	TotalCallViews          int      `json:"total_call_views"`
	TotalApplications       int      `json:"total_applications"`
	SubmittedApplications   int      `json:"submitted_applications"`
	ShortlistedApplications int      `json:"shortlisted_applications"`
	RejectedApplications    int      `json:"rejected_applications"`
	WithdrawnApplications   int      `json:"withdrawn_applications"`
	AvgApplicationRating    *float64 `json:"avg_application_rating,omitempty"`
	UnreadMessages          int      `json:"unread_messages"`
}

// Dashboard handles GET /studios/:id/dashboard. Studio membership enforced
// by route middleware.
func (h *Handler) Dashboard(c *gin.Context) {
	studioID := c.MustGet(studios.ContextStudioID).(uuid.UUID)
	ctx := c.Request.Context()

	var out DashboardResponse

	const projQ = `SELECT
			COUNT(*) FILTER (WHERE NOT is_archived),
			COUNT(*) FILTER (WHERE NOT is_archived AND status = 'casting'),
			COUNT(*) FILTER (WHERE NOT is_archived AND status = 'in_production'),
			COUNT(*) FILTER (WHERE is_archived)
		FROM projects WHERE studio_id = $1`
	err := h.pool.QueryRow(ctx, projQ, studioID).Scan(&out.TotalProjects,
		&out.CastingProjects, &out.InProductionProjects, &out.ArchivedProjects)
	if err != nil {
		response.Internal(c, "failed to load project counts")
		return
	}

	const callQ = `SELECT
			COUNT(*) FILTER (WHERE cc.status = 'open'), COALESCE(SUM(cc.views), 0)
		FROM casting_calls cc
		JOIN projects p ON p.id = cc.project_id
		WHERE p.studio_id = $1`
	err = h.pool.QueryRow(ctx, callQ, studioID).Scan(&out.OpenCastingCalls, &out.TotalCallViews)
	if err != nil {
		response.Internal(c, "failed to load casting call counts")
		return
	}

	const appQ = `SELECT a.status, COUNT(*)
		FROM applications a
		JOIN casting_calls cc ON cc.id = a.casting_call_id
		JOIN projects p ON p.id = cc.project_id
		WHERE p.studio_id = $1
		GROUP BY a.status`
	rows, err := h.pool.Query(ctx, appQ, studioID)
	if err != nil {
		response.Internal(c, "failed to load application counts")
		return
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			response.Internal(c, "failed to load application counts")
			return
		}
		out.TotalApplications += n
		switch status {
		case "submitted":
			out.SubmittedApplications = n
		case "shortlisted":
			out.ShortlistedApplications = n
		case "rejected":
			out.RejectedApplications = n
		case "withdrawn":
			out.WithdrawnApplications = n
		}
	}
	if err := rows.Err(); err != nil {
		response.Internal(c, "failed to load application counts")
		return
	}

	// Average rating across the studio's application reviews; NULL when none.
	const ratingQ = `SELECT AVG(r.rating)::float8
		FROM application_reviews r
		JOIN applications a ON a.id = r.application_id
		JOIN casting_calls cc ON cc.id = a.casting_call_id
		JOIN projects p ON p.id = cc.project_id
		WHERE p.studio_id = $1`
	_ = h.pool.QueryRow(ctx, ratingQ, studioID).Scan(&out.AvgApplicationRating)

	// Unread inbound messages: talent-sent, not yet read by the studio.
	const unreadQ = `SELECT COUNT(*)
		FROM messages m
		JOIN message_threads t ON t.id = m.thread_id
		WHERE t.studio_id = $1 AND m.sender_id = t.talent_user_id AND m.read_at IS NULL`
	_ = h.pool.QueryRow(ctx, unreadQ, studioID).Scan(&out.UnreadMessages)

	response.OK(c, out)
}

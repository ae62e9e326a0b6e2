package dto

import (
	"time"

	"github.com/spec-kit/anamaak-service/internal/domain"
	"github.com/spec-kit/anamaak-service/internal/upload"
)

// CreateReportRequest payload; accepted as JSON or multipart form fields.
type CreateReportRequest struct {
	Type         string   `json:"type" form:"type" validate:"required,min=2,max=255"`
	AutreType    *string  `json:"autre_type" form:"autre_type" validate:"omitempty,max=255"`
	Description  string   `json:"description" form:"description" validate:"required,min=10,max=2000"`
	Localisation string   `json:"localisation" form:"localisation" validate:"required,min=5,max=500"`
	Quartier     string   `json:"quartier" form:"quartier" validate:"required,min=2,max=100"`
	Latitude     *float64 `json:"latitude" form:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude" form:"longitude" validate:"omitempty,longitude"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Statut      string  `json:"statut" validate:"required,oneof=soumise en_traitement resolu"`
	Commentaire *string `json:"commentaire" validate:"omitempty,max=1000"`
}

// ReportResponse is the signalement shape returned by the API.
type ReportResponse struct {
	ID               int64      `json:"id"`
	CodeSuivi        string     `json:"code_suivi"`
	Type             string     `json:"type"`
	AutreType        *string    `json:"autre_type,omitempty"`
	Description      string     `json:"description"`
	Localisation     string     `json:"localisation"`
	Quartier         string     `json:"quartier"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	PhotoURL         *string    `json:"photo_url,omitempty"`
	Statut           string     `json:"statut"`
	PointsAttribues  int        `json:"points_attribues"`
	UtilisateurID    *int64     `json:"utilisateur_id,omitempty"`
	NomUtilisateur   *string    `json:"nom_utilisateur,omitempty"`
	EmailUtilisateur *string    `json:"email_utilisateur,omitempty"`
	AdminAssigneID   *int64     `json:"admin_assigne_id,omitempty"`
	CommentaireAdmin *string    `json:"commentaire_admin,omitempty"`
	VisiblePublic    bool       `json:"visible_public"`
	DateCreation     time.Time  `json:"date_creation"`
	DateModification time.Time  `json:"date_modification"`
	DateResolution   *time.Time `json:"date_resolution,omitempty"`
}

// HistoryEntryResponse is one status-history row.
type HistoryEntryResponse struct {
	ID             int64     `json:"id"`
	AncienStatut   *string   `json:"ancien_statut"`
	NouveauStatut  string    `json:"nouveau_statut"`
	Commentaire    *string   `json:"commentaire,omitempty"`
	NomAdmin       *string   `json:"nom_admin,omitempty"`
	DateChangement time.Time `json:"date_changement"`
}

// PaginationResponse mirrors the original listing envelope.
type PaginationResponse struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
}

// StatisticsResponse bundles the aggregate endpoints payload.
type StatisticsResponse struct {
	Globales    GlobalStatsResponse         `json:"globales"`
	ParQuartier []NeighborhoodStatsResponse `json:"par_quartier"`
	ParType     []TypeStatsResponse         `json:"par_type"`
	Evolution   []MonthlyStatsResponse      `json:"evolution"`
}

// GlobalStatsResponse totals by status.
type GlobalStatsResponse struct {
	Total                int64    `json:"total"`
	Soumis               int64    `json:"soumis"`
	EnTraitement         int64    `json:"en_traitement"`
	Resolus              int64    `json:"resolus"`
	TempsMoyenResolution *float64 `json:"temps_moyen_resolution,omitempty"`
}

// NeighborhoodStatsResponse totals per quartier.
type NeighborhoodStatsResponse struct {
	Quartier string `json:"quartier"`
	Total    int64  `json:"total"`
	Resolus  int64  `json:"resolus"`
}

// TypeStatsResponse totals per incident type.
type TypeStatsResponse struct {
	Type    string `json:"type"`
	Total   int64  `json:"total"`
	Resolus int64  `json:"resolus"`
}

// MonthlyStatsResponse is one time-series point.
type MonthlyStatsResponse struct {
	Annee   int   `json:"annee"`
	Mois    int   `json:"mois"`
	Total   int64 `json:"total"`
	Resolus int64 `json:"resolus"`
}

// NewReportResponse maps a domain report.
func NewReportResponse(report *domain.Report) ReportResponse {
	return ReportResponse{
		ID:               report.ID,
		CodeSuivi:        report.TrackingCode,
		Type:             report.Type,
		AutreType:        report.OtherType,
		Description:      report.Description,
		Localisation:     report.Location,
		Quartier:         report.Neighborhood,
		Latitude:         report.Latitude,
		Longitude:        report.Longitude,
		PhotoURL:         upload.FileURL(report.PhotoPath),
		Statut:           string(report.Status),
		PointsAttribues:  report.PointsAwarded,
		UtilisateurID:    report.UserID,
		NomUtilisateur:   report.OwnerName,
		EmailUtilisateur: report.OwnerEmail,
		AdminAssigneID:   report.AssignedAdminID,
		CommentaireAdmin: report.AdminComment,
		VisiblePublic:    report.PublicVisible,
		DateCreation:     report.CreatedAt,
		DateModification: report.UpdatedAt,
		DateResolution:   report.ResolvedAt,
	}
}

// NewReportResponses maps a slice of reports.
func NewReportResponses(reports []domain.Report) []ReportResponse {
	result := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, NewReportResponse(&reports[i]))
	}
	return result
}

// NewHistoryResponses maps history entries ordered as stored.
func NewHistoryResponses(entries []domain.StatusHistoryEntry) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		var old *string
		if entry.OldStatus != nil {
			s := string(*entry.OldStatus)
			old = &s
		}
		result = append(result, HistoryEntryResponse{
			ID:             entry.ID,
			AncienStatut:   old,
			NouveauStatut:  string(entry.NewStatus),
			Commentaire:    entry.Comment,
			NomAdmin:       entry.AdminName,
			DateChangement: entry.CreatedAt,
		})
	}
	return result
}

// NewStatisticsResponse maps domain statistics.
func NewStatisticsResponse(stats *domain.Statistics) StatisticsResponse {
	quartiers := make([]NeighborhoodStatsResponse, 0, len(stats.ByNeighborhood))
	for _, q := range stats.ByNeighborhood {
		quartiers = append(quartiers, NeighborhoodStatsResponse{
			Quartier: q.Neighborhood,
			Total:    q.Total,
			Resolus:  q.Resolved,
		})
	}
	types := make([]TypeStatsResponse, 0, len(stats.ByType))
	for _, t := range stats.ByType {
		types = append(types, TypeStatsResponse{Type: t.Type, Total: t.Total, Resolus: t.Resolved})
	}
	evolution := make([]MonthlyStatsResponse, 0, len(stats.Evolution))
	for _, m := range stats.Evolution {
		evolution = append(evolution, MonthlyStatsResponse{
			Annee:   m.Year,
			Mois:    m.Month,
			Total:   m.Total,
			Resolus: m.Resolved,
		})
	}
	return StatisticsResponse{
		Globales: GlobalStatsResponse{
			Total:                stats.Global.Total,
			Soumis:               stats.Global.Submitted,
			EnTraitement:         stats.Global.InProgress,
			Resolus:              stats.Global.Resolved,
			TempsMoyenResolution: stats.Global.AvgResolutionDays,
		},
		ParQuartier: quartiers,
		ParType:     types,
		Evolution:   evolution,
	}
}

package v1

import (
	"time"

	"github.com/shenikar/border_conflict_monitor/internal/models"
)

func ModelToConflictDataResponse(s *models.ConflictSnapshot) ConflictDataResponse {
	resp := ConflictDataResponse{
		StateStatuses: make([]StateStatusResponse, 0, len(s.RegionStatuses)),
		Attacks:       make([]AttackResponse, 0, len(s.Incidents)),
		Articles:      ModelsToArticleResponses(s.Articles),
		LastUpdated:   s.LastUpdated.UnixMilli(),
		Source:        string(s.Source),
	}
	for _, st := range s.RegionStatuses {
		resp.StateStatuses = append(resp.StateStatuses, StateStatusResponse{
			Name:        st.Name,
			DangerLevel: string(st.DangerLevel),
			Description: st.Description,
			LastUpdated: st.LastUpdated.UnixMilli(),
		})
	}
	for _, inc := range s.Incidents {
		resp.Attacks = append(resp.Attacks, AttackResponse{
			City:             inc.City,
			State:            inc.Region,
			Description:      inc.Description,
			Timestamp:        inc.Timestamp.UnixMilli(),
			SourceArticleURL: inc.SourceArticleURL,
		})
	}
	return resp
}

func ModelsToArticleResponses(articles []models.Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for _, a := range articles {
		resp := ArticleResponse{
			Title:   a.Title,
			Source:  a.Source,
			URL:     a.URL,
			Summary: a.Summary,
		}
		if !a.PublishedAt.IsZero() {
			resp.PublishedAt = a.PublishedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, resp)
	}
	return out
}

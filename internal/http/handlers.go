package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/proamhub/rankings/internal/leaderboard"
	"github.com/proamhub/rankings/internal/league"
	"github.com/proamhub/rankings/internal/ledger"
	"github.com/proamhub/rankings/internal/processor"
	"github.com/proamhub/rankings/internal/rating"
	"github.com/proamhub/rankings/internal/standings"
	"github.com/proamhub/rankings/internal/tier"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

func (s *Server) ListSubjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjects, err := s.Store.GetAllSubjects()
		if err != nil {
			http.Error(w, "Failed to get subjects", http.StatusInternalServerError)
			log.Error("Failed to get subjects from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(subjects); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) UpsertSubjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var subject league.Subject
		if err := json.NewDecoder(r.Body).Decode(&subject); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if subject.ID == "" {
			http.Error(w, "Subject id is required", http.StatusBadRequest)
			return
		}
		if err := s.Store.UpsertSubject(subject); err != nil {
			http.Error(w, "Failed to upsert subject", http.StatusInternalServerError)
			log.Error("Failed to upsert subject", "error", err, "subjectID", subject.ID)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Upserted subject %s", subject.ID)
	}
}

func (s *Server) UpsertEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event league.EventConfig
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if event.ID == "" {
			http.Error(w, "Event id is required", http.StatusBadRequest)
			return
		}
		if err := s.Store.UpsertEvent(event); err != nil {
			http.Error(w, "Failed to upsert event", http.StatusInternalServerError)
			log.Error("Failed to upsert event", "error", err, "eventID", event.ID)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Upserted event %s", event.ID)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetAllMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matches); err != nil {
			log.Error("Failed to encode matches to JSON", "error", err)
		}
	}
}

func (s *Server) CreateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var match league.Match
		if err := json.NewDecoder(r.Body).Decode(&match); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if match.TeamA == "" || match.TeamB == "" || match.TeamA == match.TeamB {
			http.Error(w, "A match requires two distinct teams", http.StatusBadRequest)
			return
		}
		if err := s.Store.CreateMatch(&match); err != nil {
			http.Error(w, "Failed to create match", http.StatusInternalServerError)
			log.Error("Failed to create match", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(match); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// CompleteMatchHandler records a reported result directly, bypassing pubsub.
// The same processing path runs either way.
func (s *Server) CompleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg processor.MatchCompleted
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if msg.MatchID == "" {
			http.Error(w, "Match id is required", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Processor.HandleMatchCompleted(&msg, isDryRun); err != nil {
			if errors.Is(err, league.ErrInconsistentResult) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
				return
			}
			http.Error(w, "Failed to process match result", http.StatusInternalServerError)
			log.Error("Failed to process match result", "error", err, "matchID", msg.MatchID)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) RateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}
		result, err := s.Rating.RateMatch(matchID)
		if err != nil {
			if errors.Is(err, rating.ErrAlreadyRated) {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, "Failed to rate match", http.StatusInternalServerError)
			log.Error("Failed to rate match", "error", err, "matchID", matchID)
			return
		}
		s.Metrics.IncMatchesRated()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) ReverseRatingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "matchID is required", http.StatusBadRequest)
			return
		}
		if err := s.Rating.ReverseRating(matchID); err != nil {
			http.Error(w, "Failed to reverse rating", http.StatusInternalServerError)
			log.Error("Failed to reverse rating", "error", err, "matchID", matchID)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) BalanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := r.URL.Query().Get("subjectID")
		if subjectID == "" {
			http.Error(w, "subjectID is required", http.StatusBadRequest)
			return
		}
		snapshot, err := s.Ledger.GetBalance(subjectID)
		if err != nil {
			if errors.Is(err, ledger.ErrInvalidSubject) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to get balance", http.StatusInternalServerError)
			log.Error("Failed to get balance", "error", err, "subjectID", subjectID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) TransactionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := r.URL.Query().Get("subjectID")
		if subjectID == "" {
			http.Error(w, "subjectID is required", http.StatusBadRequest)
			return
		}
		transactions, err := s.Ledger.GetTransactions(subjectID)
		if err != nil {
			http.Error(w, "Failed to get transactions", http.StatusInternalServerError)
			log.Error("Failed to get transactions", "error", err, "subjectID", subjectID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(transactions); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// ReplayHandler recomputes a subject's RP from the full transaction history.
// The result should always match the cached balance; a mismatch means the
// cache drifted and the replayed value is the truth.
func (s *Server) ReplayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := r.URL.Query().Get("subjectID")
		if subjectID == "" {
			http.Error(w, "subjectID is required", http.StatusBadRequest)
			return
		}
		snapshot, err := s.Ledger.ReplayLedger(subjectID)
		if err != nil {
			if errors.Is(err, ledger.ErrInvalidSubject) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to replay ledger", http.StatusInternalServerError)
			log.Error("Failed to replay ledger", "error", err, "subjectID", subjectID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) AdjustHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			SubjectID string  `json:"subject_id"`
			Amount    float64 `json:"amount"`
			Reason    string  `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would apply manual adjustment", "subjectID", req.SubjectID, "amount", req.Amount)
			w.Write([]byte("OK"))
			return
		}
		snapshot, err := s.Ledger.ApplyManualAdjustment(req.SubjectID, req.Amount, req.Reason)
		if err != nil {
			switch {
			case errors.Is(err, ledger.ErrMissingReason), errors.Is(err, ledger.ErrInvalidAmount):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ledger.ErrInvalidSubject):
				http.Error(w, err.Error(), http.StatusNotFound)
			default:
				http.Error(w, "Failed to apply adjustment", http.StatusInternalServerError)
				log.Error("Failed to apply adjustment", "error", err, "subjectID", req.SubjectID)
			}
			return
		}
		s.Metrics.IncTransactionsApplied()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) StandingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := r.URL.Query().Get("groupID")
		matches, err := s.Store.GetCompletedMatches(groupID)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get completed matches", "error", err, "groupID", groupID)
			return
		}
		rows, err := standings.Compute(matches)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			log.Error("Failed to compute standings", "error", err, "groupID", groupID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metric, filter, pagination, err := leaderboardParams(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		page, err := s.Leaderboard.Get(metric, filter, pagination)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			log.Error("Failed to get leaderboard", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(page); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func leaderboardParams(r *http.Request) (leaderboard.Metric, leaderboard.Filter, leaderboard.Pagination, error) {
	metric := leaderboard.MetricCurrentRP
	if raw := r.URL.Query().Get("metric"); raw != "" {
		metric = leaderboard.Metric(raw)
	}
	filter := leaderboard.Filter{
		Tier:   r.URL.Query().Get("tier"),
		Region: r.URL.Query().Get("region"),
	}
	var pagination leaderboard.Pagination
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return metric, filter, pagination, fmt.Errorf("invalid limit %q", raw)
		}
		pagination.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return metric, filter, pagination, fmt.Errorf("invalid offset %q", raw)
		}
		pagination.Offset = offset
	}
	return metric, filter, pagination, nil
}

func (s *Server) TierHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := r.URL.Query().Get("subjectID")
		if subjectID == "" {
			http.Error(w, "subjectID is required", http.StatusBadRequest)
			return
		}
		subject, err := s.Store.GetSubject(subjectID)
		if err != nil {
			http.Error(w, "Subject not found", http.StatusNotFound)
			return
		}
		response := struct {
			SubjectID  string          `json:"subject_id"`
			CurrentRP  float64         `json:"current_rp"`
			Tier       tier.PlayerTier `json:"tier"`
			PeakRP     float64         `json:"peak_rp"`
			PeakTier   tier.PlayerTier `json:"peak_tier"`
			SalaryTier tier.SalaryTier `json:"salary_tier"`
		}{
			SubjectID:  subject.ID,
			CurrentRP:  subject.CurrentRP,
			Tier:       tier.ForRP(subject.CurrentRP),
			PeakRP:     subject.PeakRP,
			PeakTier:   tier.ForRP(subject.PeakRP),
			SalaryTier: tier.ForPerformance(subject.PerformanceScore),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) RunDecayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		report := s.Decay.Run(r.Context(), isDryRun)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// decodePushMessage unwraps a pubsub push delivery: the JSON envelope carries
// a base64-encoded MessagePack payload.
func (s *Server) decodePushMessage(r *http.Request, returnValue any) error {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	log.Debug("Received push message", "body", string(bodyBytes))

	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
		return fmt.Errorf("failed to unmarshal wrapper JSON: %w", err)
	}
	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		return fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return s.pubsub.ProcessMessage(rawData, returnValue)
}

func (s *Server) MatchCompletedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg processor.MatchCompleted
		if err := s.decodePushMessage(r, &msg); err != nil {
			log.Error("Failed to decode match-completed message", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Processor.HandleMatchCompleted(&msg, isDryRun); err != nil {
			log.Error("Failed to handle match-completed message", "error", err, "matchID", msg.MatchID)
			http.Error(w, "Failed to process match result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) AwardRPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg processor.AwardRP
		if err := s.decodePushMessage(r, &msg); err != nil {
			log.Error("Failed to decode award-rp message", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Processor.HandleAwardRP(&msg, isDryRun); err != nil {
			log.Error("Failed to handle award-rp message", "error", err, "matchID", msg.MatchID)
			http.Error(w, "Failed to award RP", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metric, filter, pagination, err := leaderboardParams(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		page, err := s.Leaderboard.Get(metric, filter, pagination)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(page, metric)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// StandingsCommandHandler returns a handler for the /standings Slack command.
func (s *Server) StandingsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		groupID := r.FormValue("text")
		if groupID == "" {
			groupID = r.URL.Query().Get("groupID")
		}

		matches, err := s.Store.GetCompletedMatches(groupID)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get completed matches", "error", err, "groupID", groupID)
			return
		}
		rows, err := standings.Compute(matches)
		if err != nil {
			http.Error(w, "Failed to compute standings", http.StatusInternalServerError)
			log.Error("Failed to compute standings", "error", err, "groupID", groupID)
			return
		}

		msg, err := s.Notifier.FormatStandingsResponse(rows, groupID)
		if err != nil {
			http.Error(w, "Failed to format standings", http.StatusInternalServerError)
			log.Error("Failed to format standings", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

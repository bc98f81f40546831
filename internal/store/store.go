// Package store provides the keyed record store for the engagement pipeline.
// All score and conversation writes use upsert semantics so that any step
// can be retried without creating duplicate rows.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hrassist/recruiter/internal/model"
	"github.com/hrassist/recruiter/internal/recruiterr"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

// ResponseQuery selects responses of a vacancy for batch processing.
type ResponseQuery struct {
	VacancyID      string
	OnlyUnscreened bool
}

// New opens the database, creating the parent directory and migrating the
// schema when needed.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Vacancy{},
		&model.Requirements{},
		&model.Response{},
		&model.ScreeningResult{},
		&model.Conversation{},
		&model.Message{},
		&model.InterviewScoring{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func (s *Store) GetResponse(ctx context.Context, id string) (*model.Response, error) {
	var resp model.Response
	if err := s.db.WithContext(ctx).First(&resp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recruiterr.NotFoundf("response %s", id)
		}
		return nil, fmt.Errorf("get response: %w", err)
	}
	return &resp, nil
}

func (s *Store) SaveResponse(ctx context.Context, resp *model.Response) error {
	if err := s.db.WithContext(ctx).Save(resp).Error; err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}

// ListResponses returns response ids matching the query, ordered by creation time.
func (s *Store) ListResponses(ctx context.Context, q ResponseQuery) ([]string, error) {
	query := s.db.WithContext(ctx).Model(&model.Response{}).
		Where("vacancy_id = ?", q.VacancyID).
		Order("created_at ASC")
	if q.OnlyUnscreened {
		query = query.Where("status = ?", model.StatusNew)
	}

	var ids []string
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return ids, nil
}

// UpdateResponseStatus advances the response lifecycle. Illegal transitions
// are rejected; the state machine has no reversible edges.
func (s *Store) UpdateResponseStatus(ctx context.Context, id string, next model.ResponseStatus) error {
	resp, err := s.GetResponse(ctx, id)
	if err != nil {
		return err
	}

	if !resp.Status.CanTransition(next) {
		return recruiterr.Validationf("illegal transition %s -> %s for response %s", resp.Status, next, id)
	}

	tx := s.db.WithContext(ctx).Model(&model.Response{}).
		Where("id = ? AND status = ?", id, resp.Status).
		Update("status", next)
	if tx.Error != nil {
		return fmt.Errorf("update response status: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return recruiterr.Validationf("response %s changed concurrently", id)
	}
	return nil
}

// SetSelectionStatus records the final recommendation for a response.
func (s *Store) SetSelectionStatus(ctx context.Context, id string, selection model.HRSelectionStatus) error {
	tx := s.db.WithContext(ctx).Model(&model.Response{}).
		Where("id = ?", id).
		Update("hr_selection_status", selection)
	if tx.Error != nil {
		return fmt.Errorf("set selection status: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return recruiterr.NotFoundf("response %s", id)
	}
	return nil
}

// UpsertScreeningResult writes the screening verdict, replacing any previous
// one for the same response. Safe to call on retry.
func (s *Store) UpsertScreeningResult(ctx context.Context, result *model.ScreeningResult) error {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "response_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score", "detailed_score", "analysis", "greeting", "questions", "updated_at",
		}),
	}).Create(result)
	if tx.Error != nil {
		return fmt.Errorf("upsert screening result: %w", tx.Error)
	}
	return nil
}

func (s *Store) GetScreeningResult(ctx context.Context, responseID string) (*model.ScreeningResult, error) {
	var result model.ScreeningResult
	if err := s.db.WithContext(ctx).First(&result, "response_id = ?", responseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recruiterr.NotFoundf("screening result for response %s", responseID)
		}
		return nil, fmt.Errorf("get screening result: %w", err)
	}
	return &result, nil
}

// UpsertInterviewScoring writes the final interview verdict, keyed by
// conversation id. A retried completion step replaces, never duplicates.
func (s *Store) UpsertInterviewScoring(ctx context.Context, scoring *model.InterviewScoring) error {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score", "detailed_score", "analysis", "updated_at",
		}),
	}).Create(scoring)
	if tx.Error != nil {
		return fmt.Errorf("upsert interview scoring: %w", tx.Error)
	}
	return nil
}

func (s *Store) GetInterviewScoring(ctx context.Context, conversationID uint) (*model.InterviewScoring, error) {
	var scoring model.InterviewScoring
	if err := s.db.WithContext(ctx).First(&scoring, "conversation_id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recruiterr.NotFoundf("interview scoring for conversation %d", conversationID)
		}
		return nil, fmt.Errorf("get interview scoring: %w", err)
	}
	return &scoring, nil
}

func (s *Store) GetConversation(ctx context.Context, id uint) (*model.Conversation, error) {
	var conv model.Conversation
	if err := s.db.WithContext(ctx).First(&conv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recruiterr.NotFoundf("conversation %d", id)
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

func (s *Store) GetConversationByChatID(ctx context.Context, chatID string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := s.db.WithContext(ctx).First(&conv, "chat_id = ?", chatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recruiterr.NotFoundf("conversation with chat id %s", chatID)
		}
		return nil, fmt.Errorf("get conversation by chat id: %w", err)
	}
	return &conv, nil
}

// UpsertConversation creates or replaces the conversation for its chat id.
// First-contact retries land on the same row.
func (s *Store) UpsertConversation(ctx context.Context, conv *model.Conversation) error {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"response_id", "candidate_name", "status", "meta", "updated_at",
		}),
	}).Create(conv)
	if tx.Error != nil {
		return fmt.Errorf("upsert conversation: %w", tx.Error)
	}
	return nil
}

func (s *Store) SaveConversation(ctx context.Context, conv *model.Conversation) error {
	if err := s.db.WithContext(ctx).Save(conv).Error; err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// AppendMessage records one chat event. Messages are never updated.
func (s *Store) AppendMessage(ctx context.Context, msg *model.Message) error {
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID uint) ([]model.Message, error) {
	var msgs []model.Message
	if err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (s *Store) GetVacancy(ctx context.Context, id string) (*model.Vacancy, error) {
	var vacancy model.Vacancy
	if err := s.db.WithContext(ctx).First(&vacancy, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recruiterr.NotFoundf("vacancy %s", id)
		}
		return nil, fmt.Errorf("get vacancy: %w", err)
	}
	return &vacancy, nil
}

func (s *Store) SaveVacancy(ctx context.Context, vacancy *model.Vacancy) error {
	if err := s.db.WithContext(ctx).Save(vacancy).Error; err != nil {
		return fmt.Errorf("save vacancy: %w", err)
	}
	return nil
}

func (s *Store) GetRequirements(ctx context.Context, vacancyID string) (*model.Requirements, error) {
	var reqs model.Requirements
	if err := s.db.WithContext(ctx).First(&reqs, "vacancy_id = ?", vacancyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recruiterr.NotFoundf("requirements for vacancy %s", vacancyID)
		}
		return nil, fmt.Errorf("get requirements: %w", err)
	}
	return &reqs, nil
}

func (s *Store) SaveRequirements(ctx context.Context, reqs *model.Requirements) error {
	if err := s.db.WithContext(ctx).Save(reqs).Error; err != nil {
		return fmt.Errorf("save requirements: %w", err)
	}
	return nil
}

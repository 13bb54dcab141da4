package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"infinitism/internal/domain"
	"infinitism/internal/domain/models/mindmap"
	"infinitism/internal/domain/repositories"
)

// PostgresMindmapRepository stores mind maps as JSONB documents.
type PostgresMindmapRepository struct {
	pool      *pgxpool.Pool
	tables    *TableNames
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewMindmapRepository creates a new PostgresMindmapRepository
func NewMindmapRepository(config *RepositoryConfig) repositories.MindmapRepository {
	return &PostgresMindmapRepository{
		pool:      config.Pool,
		tables:    config.Tables,
		txManager: NewTransactionManager(config.Pool, config.Logger),
		logger:    config.Logger,
	}
}

// Create inserts a new mind map
func (r *PostgresMindmapRepository) Create(ctx context.Context, m *mindmap.Mindmap) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, title, data, generation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Mindmaps)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		m.ID,
		m.UserID,
		m.Data.Title,
		m.Data,
		m.Generation,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("mind map %s already exists", m.ID),
				ResourceType: "mindmap",
				ResourceID:   m.ID,
			}
		}
		return fmt.Errorf("create mind map: %w", err)
	}

	return nil
}

// GetByID retrieves a mind map owned by userID
func (r *PostgresMindmapRepository) GetByID(ctx context.Context, id, userID string) (*mindmap.Mindmap, error) {
	return r.get(ctx, id, userID, false)
}

func (r *PostgresMindmapRepository) get(ctx context.Context, id, userID string, forUpdate bool) (*mindmap.Mindmap, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, data, generation, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Mindmaps)
	if forUpdate {
		query += " FOR UPDATE"
	}

	var m mindmap.Mindmap
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
		&m.ID,
		&m.UserID,
		&m.Data,
		&m.Generation,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("mind map not found: %s", id)}
		}
		return nil, fmt.Errorf("get mind map: %w", err)
	}

	return &m, nil
}

// List returns the owner's mind maps, newest first
func (r *PostgresMindmapRepository) List(ctx context.Context, userID string) ([]mindmap.Summary, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, data, generation, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, r.tables.Mindmaps)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list mind maps: %w", err)
	}
	defer rows.Close()

	summaries := make([]mindmap.Summary, 0)
	for rows.Next() {
		var m mindmap.Mindmap
		if err := rows.Scan(&m.ID, &m.UserID, &m.Data, &m.Generation, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan mind map: %w", err)
		}
		summaries = append(summaries, m.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mind maps: %w", err)
	}

	return summaries, nil
}

// Update locks the row, applies fn and writes the result back in one transaction
func (r *PostgresMindmapRepository) Update(ctx context.Context, id, userID string, fn func(m *mindmap.Mindmap) error) (*mindmap.Mindmap, error) {
	var updated *mindmap.Mindmap

	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		m, err := r.get(txCtx, id, userID, true)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}

		query := fmt.Sprintf(`
			UPDATE %s
			SET title = $3, data = $4, generation = $5, updated_at = $6
			WHERE id = $1 AND user_id = $2
		`, r.tables.Mindmaps)

		executor := GetExecutor(txCtx, r.pool)
		if _, err := executor.Exec(txCtx, query, m.ID, m.UserID, m.Data.Title, m.Data, m.Generation, m.UpdatedAt); err != nil {
			return fmt.Errorf("update mind map: %w", err)
		}

		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a mind map
func (r *PostgresMindmapRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Mindmaps)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return &domain.NotFoundError{Message: fmt.Sprintf("mind map not found: %s", id)}
		}
		return fmt.Errorf("delete mind map: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Message: fmt.Sprintf("mind map not found: %s", id)}
	}

	return nil
}

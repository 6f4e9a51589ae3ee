package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Repository = (*PostgresItineraryRepository)(nil)

// Repository persists generated itineraries. The pipeline itself never
// touches storage; the surrounding service saves the final result on the
// caller's behalf.
type Repository interface {
	SaveItinerary(ctx context.Context, itinerary *types.Itinerary) (uuid.UUID, error)
	GetItinerary(ctx context.Context, itineraryID, userID uuid.UUID) (*types.Itinerary, error)
	GetItinerariesByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Itinerary, int, error)
	UpdateItineraryStatus(ctx context.Context, itineraryID, userID uuid.UUID, status types.ItineraryStatus) error
	DeleteItinerary(ctx context.Context, itineraryID, userID uuid.UUID) error
}

// DBPool is the subset of pgxpool.Pool the repository needs. Declared so the
// repository can be exercised against pgxmock in tests.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresItineraryRepository struct {
	logger *slog.Logger
	pgpool DBPool
}

func NewPostgresItineraryRepository(pgpool DBPool, logger *slog.Logger) *PostgresItineraryRepository {
	return &PostgresItineraryRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresItineraryRepository) SaveItinerary(ctx context.Context, itinerary *types.Itinerary) (uuid.UUID, error) {
	daysJSON, err := json.Marshal(itinerary.Days)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal days: %w", err)
	}
	transportationJSON, err := marshalAdvisory(itinerary.Transportation)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal transportation: %w", err)
	}
	accommodationJSON, err := marshalAdvisory(itinerary.Accommodation)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal accommodation: %w", err)
	}

	query := `
        INSERT INTO itineraries (
            user_id, title, destination, start_date, days, travelers,
            budget, preferences, status, transportation, accommodation
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id
    `
	var id uuid.UUID
	if err = r.pgpool.QueryRow(ctx, query,
		itinerary.UserID, itinerary.Title, itinerary.Destination, itinerary.StartDate,
		daysJSON, itinerary.Travelers, itinerary.Budget, itinerary.Preferences,
		string(itinerary.Status), transportationJSON, accommodationJSON,
	).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return id, nil
}

func (r *PostgresItineraryRepository) GetItinerary(ctx context.Context, itineraryID, userID uuid.UUID) (*types.Itinerary, error) {
	query := `
        SELECT id, user_id, title, destination, start_date, days, travelers,
               budget, preferences, status, transportation, accommodation,
               created_at, updated_at
        FROM itineraries
        WHERE id = $1 AND user_id = $2
    `
	itinerary, err := scanItinerary(r.pgpool.QueryRow(ctx, query, itineraryID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: itinerary %s", types.ErrNotFound, itineraryID)
		}
		return nil, fmt.Errorf("failed to find itinerary: %w", err)
	}
	return itinerary, nil
}

func (r *PostgresItineraryRepository) GetItinerariesByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.Itinerary, int, error) {
	var total int
	if err := r.pgpool.QueryRow(ctx,
		`SELECT COUNT(*) FROM itineraries WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count itineraries: %w", err)
	}

	query := `
        SELECT id, user_id, title, destination, start_date, days, travelers,
               budget, preferences, status, transportation, accommodation,
               created_at, updated_at
        FROM itineraries
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.pgpool.Query(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	var itineraries []types.Itinerary
	for rows.Next() {
		itinerary, err := scanItinerary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan itinerary row: %w", err)
		}
		itineraries = append(itineraries, *itinerary)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed reading itinerary rows: %w", err)
	}
	return itineraries, total, nil
}

func (r *PostgresItineraryRepository) UpdateItineraryStatus(ctx context.Context, itineraryID, userID uuid.UUID, status types.ItineraryStatus) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE itineraries SET status = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		string(status), itineraryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update itinerary status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: itinerary %s", types.ErrNotFound, itineraryID)
	}
	return nil
}

func (r *PostgresItineraryRepository) DeleteItinerary(ctx context.Context, itineraryID, userID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM itineraries WHERE id = $1 AND user_id = $2`,
		itineraryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: itinerary %s", types.ErrNotFound, itineraryID)
	}
	return nil
}

func marshalAdvisory(advisory *types.TravelAdvisory) ([]byte, error) {
	if advisory == nil {
		return nil, nil
	}
	return json.Marshal(advisory)
}

// scanItinerary decodes one itinerary row, including the JSONB columns.
func scanItinerary(row pgx.Row) (*types.Itinerary, error) {
	var (
		itinerary          types.Itinerary
		daysJSON           []byte
		transportationJSON []byte
		accommodationJSON  []byte
		status             string
	)
	if err := row.Scan(
		&itinerary.ID, &itinerary.UserID, &itinerary.Title, &itinerary.Destination,
		&itinerary.StartDate, &daysJSON, &itinerary.Travelers, &itinerary.Budget,
		&itinerary.Preferences, &status, &transportationJSON, &accommodationJSON,
		&itinerary.CreatedAt, &itinerary.UpdatedAt,
	); err != nil {
		return nil, err
	}
	itinerary.Status = types.ItineraryStatus(status)

	if len(daysJSON) > 0 {
		if err := json.Unmarshal(daysJSON, &itinerary.Days); err != nil {
			return nil, fmt.Errorf("failed to unmarshal days: %w", err)
		}
	}
	if len(transportationJSON) > 0 {
		if err := json.Unmarshal(transportationJSON, &itinerary.Transportation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transportation: %w", err)
		}
	}
	if len(accommodationJSON) > 0 {
		if err := json.Unmarshal(accommodationJSON, &itinerary.Accommodation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal accommodation: %w", err)
		}
	}
	return &itinerary, nil
}

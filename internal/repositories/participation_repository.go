package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fastmeet-service/internal/models"
)

var (
	ErrParticipationNotFound   = errors.New("participation not found")
	ErrParticipationExists     = errors.New("participation already exists")
	ErrParticipationNotPending = errors.New("participation is not pending")
)

// ActiveMeetError reports that the user already holds an active meet relation.
type ActiveMeetError struct {
	MeetID int
}

func (e *ActiveMeetError) Error() string {
	return fmt.Sprintf("user already active in meet %d", e.MeetID)
}

// uniqueViolation is the postgres error code raised when the global
// participations_user_id_key index rejects a concurrent insert.
const uniqueViolation = "23505"

// ParticipationRepository abstracts participation persistence.
type ParticipationRepository interface {
	CreatePending(ctx context.Context, meetID int, userID int) (models.Participation, error)
	Get(ctx context.Context, participationID int) (models.Participation, error)
	GetByMeetAndUser(ctx context.Context, meetID int, userID int) (models.Participation, error)
	GetByUser(ctx context.Context, userID int) (models.Participation, error)
	ListByMeet(ctx context.Context, meetID int) ([]models.Participation, error)
	Accept(ctx context.Context, participationID int) (models.Participation, error)
	Delete(ctx context.Context, participationID int) error
	DeleteByMeetUserStatus(ctx context.Context, meetID int, userID int, status string) error
}

// ParticipationRepo is a sqlx implementation of ParticipationRepository.
type ParticipationRepo struct {
	db *sqlx.DB
}

// NewParticipationRepo constructs a ParticipationRepo.
func NewParticipationRepo(db *sqlx.DB) *ParticipationRepo {
	return &ParticipationRepo{db: db}
}

const participationColumns = `id, meet_id, user_id, status, created_at`

// CreatePending inserts a pending participation, enforcing the
// single-active-meet rule inside one transaction: the check covers meets the
// user organizes and participations they already hold. The per-user advisory
// lock serializes this against concurrent joins and meet creates, and the
// global unique index on participations.user_id backstops the insert.
func (r *ParticipationRepo) CreatePending(ctx context.Context, meetID int, userID int) (models.Participation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Participation{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, userLockClass, userID); err != nil {
		return models.Participation{}, err
	}

	var organizedID int
	err = tx.GetContext(ctx, &organizedID, `SELECT id FROM fast_meets WHERE organizer_id=$1 LIMIT 1`, userID)
	if err == nil {
		err = &ActiveMeetError{MeetID: organizedID}
		return models.Participation{}, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Participation{}, err
	}

	var existingMeetID int
	err = tx.GetContext(ctx, &existingMeetID, `SELECT meet_id FROM participations WHERE user_id=$1 LIMIT 1`, userID)
	if err == nil {
		if existingMeetID == meetID {
			err = ErrParticipationExists
		} else {
			err = &ActiveMeetError{MeetID: existingMeetID}
		}
		return models.Participation{}, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Participation{}, err
	}

	var participation models.Participation
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO participations (meet_id, user_id, status) VALUES ($1, $2, $3) RETURNING `+participationColumns,
		meetID, userID, models.ParticipationPending,
	).StructScan(&participation)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			// lost the race against a concurrent request from another session
			err = &ActiveMeetError{MeetID: 0}
		}
		return models.Participation{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Participation{}, err
	}
	return participation, nil
}

// Get fetches a participation by id.
func (r *ParticipationRepo) Get(ctx context.Context, participationID int) (models.Participation, error) {
	var participation models.Participation
	err := r.db.GetContext(ctx, &participation,
		`SELECT `+participationColumns+` FROM participations WHERE id=$1`, participationID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participation{}, ErrParticipationNotFound
	}
	return participation, err
}

// GetByMeetAndUser fetches the user's participation in a meet, if any.
func (r *ParticipationRepo) GetByMeetAndUser(ctx context.Context, meetID int, userID int) (models.Participation, error) {
	var participation models.Participation
	err := r.db.GetContext(ctx, &participation,
		`SELECT `+participationColumns+` FROM participations WHERE meet_id=$1 AND user_id=$2`, meetID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participation{}, ErrParticipationNotFound
	}
	return participation, err
}

// GetByUser fetches the user's participation, if any. The global unique index
// on user_id guarantees at most one row.
func (r *ParticipationRepo) GetByUser(ctx context.Context, userID int) (models.Participation, error) {
	var participation models.Participation
	err := r.db.GetContext(ctx, &participation,
		`SELECT `+participationColumns+` FROM participations WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participation{}, ErrParticipationNotFound
	}
	return participation, err
}

// ListByMeet returns the meet's participations, oldest first.
func (r *ParticipationRepo) ListByMeet(ctx context.Context, meetID int) ([]models.Participation, error) {
	var participations []models.Participation
	err := r.db.SelectContext(ctx, &participations,
		`SELECT `+participationColumns+` FROM participations WHERE meet_id=$1 ORDER BY created_at ASC`, meetID)
	return participations, err
}

// Accept transitions a pending participation to accepted. The status guard in
// the WHERE clause makes the transition race-safe against concurrent declines.
func (r *ParticipationRepo) Accept(ctx context.Context, participationID int) (models.Participation, error) {
	var participation models.Participation
	err := r.db.QueryRowxContext(ctx,
		`UPDATE participations SET status=$1 WHERE id=$2 AND status=$3 RETURNING `+participationColumns,
		models.ParticipationAccepted, participationID, models.ParticipationPending,
	).StructScan(&participation)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participation{}, ErrParticipationNotPending
	}
	return participation, err
}

// Delete removes a participation by id.
func (r *ParticipationRepo) Delete(ctx context.Context, participationID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM participations WHERE id=$1`, participationID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrParticipationNotFound
	}
	return nil
}

// DeleteByMeetUserStatus removes the user's participation in a meet if it has
// the given status. Used for cancel (pending) and leave (accepted).
func (r *ParticipationRepo) DeleteByMeetUserStatus(ctx context.Context, meetID int, userID int, status string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM participations WHERE meet_id=$1 AND user_id=$2 AND status=$3`, meetID, userID, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrParticipationNotFound
	}
	return nil
}

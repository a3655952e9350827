package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"fastmeet-service/internal/models"
)

var ErrMeetNotFound = errors.New("meet not found")

// userLockClass namespaces the per-user advisory lock serializing every
// mutation governed by the one-active-meet rule: creating a meet and
// requesting a join both take it, so a create racing a create or a join
// cannot both pass the busy check.
const userLockClass = 4218

// MeetRepository abstracts fast meet persistence.
type MeetRepository interface {
	CreateMeet(ctx context.Context, meet models.FastMeet, stops []models.MeetStop) (models.FastMeet, error)
	GetMeet(ctx context.Context, meetID int) (models.FastMeet, error)
	ListMeets(ctx context.Context) ([]models.FastMeet, error)
	ListStops(ctx context.Context, meetID int) ([]models.MeetStop, error)
	DeleteMeet(ctx context.Context, meetID int) error
	ActiveMeetIDForUser(ctx context.Context, userID int, excludeMeetID int) (int, bool, error)
}

// MeetRepo is a sqlx implementation of MeetRepository.
type MeetRepo struct {
	db *sqlx.DB
}

// NewMeetRepo constructs a MeetRepo.
func NewMeetRepo(db *sqlx.DB) *MeetRepo {
	return &MeetRepo{db: db}
}

const meetColumns = `id, organizer_id, name, description, meet_type, sub_type, tags, latitude, longitude, created_at`

// CreateMeet inserts a meet and its ordered stops atomically. The
// one-active-meet rule for the organizer side is enforced here, inside the
// transaction under the per-user advisory lock: a user who already organizes
// a meet or holds any participation gets ActiveMeetError.
func (r *MeetRepo) CreateMeet(ctx context.Context, meet models.FastMeet, stops []models.MeetStop) (models.FastMeet, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.FastMeet{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, userLockClass, meet.OrganizerID); err != nil {
		return models.FastMeet{}, err
	}

	var activeID int
	err = tx.GetContext(ctx, &activeID,
		`SELECT id FROM fast_meets WHERE organizer_id=$1
         UNION
         SELECT meet_id FROM participations WHERE user_id=$1
         LIMIT 1`, meet.OrganizerID)
	if err == nil {
		err = &ActiveMeetError{MeetID: activeID}
		return models.FastMeet{}, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.FastMeet{}, err
	}

	var created models.FastMeet
	if err = tx.QueryRowxContext(ctx,
		`INSERT INTO fast_meets (organizer_id, name, description, meet_type, sub_type, tags, latitude, longitude)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING `+meetColumns,
		meet.OrganizerID, meet.Name, meet.Description, meet.MeetType, meet.SubType, meet.Tags, meet.Latitude, meet.Longitude,
	).StructScan(&created); err != nil {
		return models.FastMeet{}, err
	}

	for i, stop := range stops {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO meet_stops (meet_id, position, location, address, latitude, longitude, start_time, end_time)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			created.ID, i, stop.Location, stop.Address, stop.Latitude, stop.Longitude, stop.StartTime, stop.EndTime,
		); err != nil {
			return models.FastMeet{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.FastMeet{}, err
	}
	return created, nil
}

// GetMeet fetches a meet by id.
func (r *MeetRepo) GetMeet(ctx context.Context, meetID int) (models.FastMeet, error) {
	var meet models.FastMeet
	err := r.db.GetContext(ctx, &meet, `SELECT `+meetColumns+` FROM fast_meets WHERE id=$1`, meetID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FastMeet{}, ErrMeetNotFound
	}
	return meet, err
}

// ListMeets returns all meets, newest first.
func (r *MeetRepo) ListMeets(ctx context.Context) ([]models.FastMeet, error) {
	var meets []models.FastMeet
	err := r.db.SelectContext(ctx, &meets, `SELECT `+meetColumns+` FROM fast_meets ORDER BY created_at DESC`)
	return meets, err
}

// ListStops returns the meet's stops in position order.
func (r *MeetRepo) ListStops(ctx context.Context, meetID int) ([]models.MeetStop, error) {
	var stops []models.MeetStop
	err := r.db.SelectContext(ctx, &stops,
		`SELECT id, meet_id, position, location, address, latitude, longitude, start_time, end_time
         FROM meet_stops WHERE meet_id=$1 ORDER BY position ASC`, meetID)
	return stops, err
}

// DeleteMeet removes a meet. Participations, stops and messages go with it
// through ON DELETE CASCADE.
func (r *MeetRepo) DeleteMeet(ctx context.Context, meetID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fast_meets WHERE id=$1`, meetID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMeetNotFound
	}
	return nil
}

// ActiveMeetIDForUser reports the meet, if any, that already occupies the user:
// a meet they organize or one they hold a pending/accepted participation in,
// excluding excludeMeetID.
func (r *MeetRepo) ActiveMeetIDForUser(ctx context.Context, userID int, excludeMeetID int) (int, bool, error) {
	var meetID int
	err := r.db.GetContext(ctx, &meetID,
		`SELECT id FROM fast_meets WHERE organizer_id=$1 AND id<>$2
         UNION
         SELECT meet_id FROM participations WHERE user_id=$1 AND meet_id<>$2
         LIMIT 1`, userID, excludeMeetID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return meetID, true, nil
}

package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"climate-server/internal/modules/climate/types"

	"github.com/jmoiron/sqlx"
)

//go:embed sql/get-max-date.sql
var getMaxDateSQL string

//go:embed sql/get-precipitation-since.sql
var getPrecipitationSinceSQL string

//go:embed sql/get-station-ids.sql
var getStationIDsSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-most-active-station.sql
var getMostActiveStationSQL string

//go:embed sql/get-station-temps-since.sql
var getStationTempsSinceSQL string

//go:embed sql/get-temperature-stats.sql
var getTemperatureStatsSQL string

const (
	dateLayout = "2006-01-02"
	// recentWindowDays is how far back from the newest measurement "the last year" reaches.
	recentWindowDays = 365
)

// ErrEmptyDataset is returned when an operation needs at least one measurement.
var ErrEmptyDataset = errors.New("empty dataset: no measurements")

type ClimateRepository interface {
	RecentPrecipitation(ctx context.Context) (types.PrecipitationByDate, error)
	ListStations(ctx context.Context) ([]string, error)
	Stations(ctx context.Context) ([]types.Station, error)
	MostActiveStation(ctx context.Context) (types.StationActivity, error)
	MostActiveStationRecentTemps(ctx context.Context) ([]float64, error)
	TemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureStats, error)
}

type repositoryImpl struct {
	db       *sql.DB
	bindType int
}

// NewRepository reads from conn; driver decides the placeholder style.
func NewRepository(conn *sql.DB, driver string) ClimateRepository {
	return &repositoryImpl{db: conn, bindType: sqlx.BindType(driver)}
}

// bind rewrites the embedded '?' placeholders for the configured driver.
func (r *repositoryImpl) bind(query string) string {
	return sqlx.Rebind(r.bindType, query)
}

func (r *repositoryImpl) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, r.bind(query), args...)
}

func (r *repositoryImpl) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.db.QueryRowContext(ctx, r.bind(query), args...)
}

// recentCutoff returns the newest measurement date minus recentWindowDays.
func (r *repositoryImpl) recentCutoff(ctx context.Context) (string, error) {
	var maxDate sql.NullString
	if err := r.queryRow(ctx, getMaxDateSQL).Scan(&maxDate); err != nil {
		return "", fmt.Errorf("most recent date: %w", err)
	}
	if !maxDate.Valid {
		return "", ErrEmptyDataset
	}
	return cutoffFrom(maxDate.String)
}

func cutoffFrom(mostRecent string) (string, error) {
	t, err := time.Parse(dateLayout, mostRecent)
	if err != nil {
		return "", fmt.Errorf("parse most recent date %q: %w", mostRecent, err)
	}
	return t.AddDate(0, 0, -recentWindowDays).Format(dateLayout), nil
}

// RecentPrecipitation maps each date in the last year of data to its
// precipitation. Several stations report the same date, so the row the
// engine returns last for a date wins.
func (r *repositoryImpl) RecentPrecipitation(ctx context.Context) (types.PrecipitationByDate, error) {
	cutoff, err := r.recentCutoff(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent precipitation: %w", err)
	}

	rows, err := r.query(ctx, getPrecipitationSinceSQL, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent precipitation: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close precipitation rows", "error", err)
		}
	}()

	out := make(types.PrecipitationByDate)
	for rows.Next() {
		var (
			date string
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&date, &prcp); err != nil {
			return nil, err
		}
		out[date] = nullFloat(prcp)
	}
	return out, rows.Err()
}

// ListStations returns station identifiers in storage order.
func (r *repositoryImpl) ListStations(ctx context.Context) ([]string, error) {
	rows, err := r.query(ctx, getStationIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close station id rows", "error", err)
		}
	}()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) Stations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.query(ctx, getStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()

	out := make([]types.Station, 0)
	for rows.Next() {
		var (
			s             types.Station
			name          sql.NullString
			lat, lon, elv sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &name, &lat, &lon, &elv); err != nil {
			return nil, err
		}
		s.Name = name.String
		s.Latitude = lat.Float64
		s.Longitude = lon.Float64
		s.Elevation = elv.Float64
		out = append(out, s)
	}
	return out, rows.Err()
}

// MostActiveStation returns the station with the most measurements. On a tie
// the engine's first row wins.
func (r *repositoryImpl) MostActiveStation(ctx context.Context) (types.StationActivity, error) {
	var a types.StationActivity
	err := r.queryRow(ctx, getMostActiveStationSQL).Scan(&a.StationID, &a.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StationActivity{}, ErrEmptyDataset
	}
	if err != nil {
		return types.StationActivity{}, fmt.Errorf("most active station: %w", err)
	}
	return a, nil
}

// MostActiveStationRecentTemps returns the temperatures the most active
// station recorded in the last year of data, in result order.
func (r *repositoryImpl) MostActiveStationRecentTemps(ctx context.Context) ([]float64, error) {
	active, err := r.MostActiveStation(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent temperatures: %w", err)
	}
	cutoff, err := r.recentCutoff(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent temperatures: %w", err)
	}
	slog.DebugContext(ctx, "most active station",
		"station", active.StationID,
		"measurements", active.Count,
		"cutoff", cutoff,
	)

	rows, err := r.query(ctx, getStationTempsSinceSQL, active.StationID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent temperatures: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close temperature rows", "error", err)
		}
	}()

	out := make([]float64, 0)
	for rows.Next() {
		var tobs float64
		if err := rows.Scan(&tobs); err != nil {
			return nil, err
		}
		out = append(out, tobs)
	}
	return out, rows.Err()
}

// temperatureStatsQuery builds the aggregate query. Bounds are compared
// against the text form of date so a DATE column behaves like the sqlite one.
func temperatureStatsQuery(start string, end *string) (string, []any) {
	query := getTemperatureStatsSQL
	args := []any{start}
	if end != nil {
		query += "  AND CAST(date AS TEXT) <= ?\n"
		args = append(args, *end)
	}
	return query, args
}

// TemperatureStats aggregates temperatures with start <= date (<= end when
// end is non-nil). Bounds are compared as strings, not parsed as dates.
// No matching rows yields a zero TemperatureStats, not an error.
func (r *repositoryImpl) TemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureStats, error) {
	query, args := temperatureStatsQuery(start, end)

	var lo, hi, avg sql.NullFloat64
	if err := r.queryRow(ctx, query, args...).Scan(&lo, &hi, &avg); err != nil {
		return types.TemperatureStats{}, fmt.Errorf("temperature stats: %w", err)
	}
	return types.TemperatureStats{
		Min: nullFloat(lo),
		Max: nullFloat(hi),
		Avg: nullFloat(avg),
	}, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

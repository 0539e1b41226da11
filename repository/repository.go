package repository

import (
	"database/sql"
	"emission-monitoring/config"
	"emission-monitoring/models"
	"emission-monitoring/sqls"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var sqlstmtInsertRollingRow, sqlstmtSelectRollingRows, sqlstmtUpdateLastExecution, sqlstmtInsertLog, sqlstmtSelectLatestRolling *sql.Stmt
var mutexLogInserts sync.Mutex

type Repository interface {
	InitStatements() error
	GetJobs() ([]models.Job, error)
	GetRegionalFeeds() ([]models.RegionalFeed, error)
	GetLatestRollingDate(jobID int) (sql.NullTime, error)
	GetRollingRows(jobID int, fromTime, toTime time.Time) ([]models.RollingAverageRow, error)
	InsertRollingRows(rows []models.RollingAverageRow) error
	UpdateLastExecution(jobID int, lastExecution time.Time) error
	InsertLog(tagID, jobID, messageID int) error
	Close()
}

var NewRepository = func(db *sql.DB) Repository {
	return &Impl{
		Db: db,
	}
}

type Impl struct {
	Db *sql.DB
}

func (i *Impl) InitStatements() error {
	var err error

	sqlstmtInsertRollingRow, err = i.Db.Prepare(sqls.GetSQLInsertRollingRow())
	if err != nil {
		log.Error(err)
		return err
	}

	sqlstmtSelectRollingRows, err = i.Db.Prepare(sqls.GetSQLSelectRollingRows())
	if err != nil {
		log.Error(err)
		return err
	}

	sqlstmtUpdateLastExecution, err = i.Db.Prepare(sqls.GetSQLUpdateLastExecution())
	if err != nil {
		log.Error(err)
		return err
	}

	sqlstmtInsertLog, err = i.Db.Prepare(sqls.GetSQLInsertLog())
	if err != nil {
		log.Error(err)
		return err
	}

	sqlstmtSelectLatestRolling, err = i.Db.Prepare(sqls.GetSQLSelectLatestRollingDate())
	if err != nil {
		log.Error(err)
		return err
	}

	return nil
}

func (i *Impl) Close() {
	if sqlstmtInsertRollingRow != nil {
		sqlstmtInsertRollingRow.Close()
	}
	if sqlstmtSelectRollingRows != nil {
		sqlstmtSelectRollingRows.Close()
	}
	if sqlstmtUpdateLastExecution != nil {
		sqlstmtUpdateLastExecution.Close()
	}
	if sqlstmtInsertLog != nil {
		sqlstmtInsertLog.Close()
	}
	if sqlstmtSelectLatestRolling != nil {
		sqlstmtSelectLatestRolling.Close()
	}
}

//GetJobs retrieves the enabled jobs joined with their server, station, parameter, stack and email details
func (i *Impl) GetJobs() ([]models.Job, error) {

	rows, err := i.Db.Query(sqls.GetSQLSelectJobs())
	if err != nil {
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	var job models.Job
	var cc, bcc sql.NullString

	for rows.Next() {
		err = rows.Scan(
			&job.ID,
			&job.Host,
			&job.Username,
			&job.Password,
			&job.Database,
			&job.StationNumber,
			&job.Timebase,
			&job.ValueNumber,
			&job.Pollutant,
			&job.Unit,
			&job.Standard,
			&job.StackName,
			&job.Email.To,
			&cc,
			&bcc,
			&job.Email.Subject,
			&job.Email.Body,
			&job.Email.Address,
			&job.Email.Password,
			&job.Email.SMTPHost,
			&job.Email.Port,
			&job.LastExecution)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		job.Email.Cc = formatNullString(cc)
		job.Email.Bcc = formatNullString(bcc)
		jobs = append(jobs, job)
	}
	if err = rows.Err(); err != nil {
		log.Error(err)
		return nil, err
	}

	return jobs, nil
}

//GetRegionalFeeds retrieves the regional feed definitions
func (i *Impl) GetRegionalFeeds() ([]models.RegionalFeed, error) {

	rows, err := i.Db.Query(sqls.GetSQLSelectRegionalFeeds())
	if err != nil {
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var feeds []models.RegionalFeed
	var feed models.RegionalFeed

	for rows.Next() {
		err = rows.Scan(&feed.Host, &feed.Username, &feed.Password, &feed.Database, &feed.TableName)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		feeds = append(feeds, feed)
	}
	if err = rows.Err(); err != nil {
		log.Error(err)
		return nil, err
	}

	return feeds, nil
}

//GetLatestRollingDate finds the newest cached rolling-average timestamp for a job
func (i *Impl) GetLatestRollingDate(jobID int) (sql.NullTime, error) {

	var latest sql.NullTime
	err := sqlstmtSelectLatestRolling.QueryRow(sql.Named("jobId", jobID)).Scan(&latest)
	if err != nil {
		log.Error(err)
		return latest, err
	}
	return latest, nil
}

//GetRollingRows reads back the rolling rows for a job with timestamp in (fromTime, toTime]
func (i *Impl) GetRollingRows(jobID int, fromTime, toTime time.Time) ([]models.RollingAverageRow, error) {

	rows, err := sqlstmtSelectRollingRows.Query(
		sql.Named("jobId", jobID),
		sql.Named("fromTime", fromTime),
		sql.Named("toTime", toTime))
	if err != nil {
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var rollingRows []models.RollingAverageRow
	var row models.RollingAverageRow
	row.JobID = jobID

	for rows.Next() {
		err = rows.Scan(&row.Timestamp, &row.Rolling1h, &row.Rolling3h, &row.Rolling4h, &row.RawValue)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		rollingRows = append(rollingRows, row)
	}
	if err = rows.Err(); err != nil {
		log.Error(err)
		return nil, err
	}

	return rollingRows, nil
}

//InsertRollingRows inserts all the rows for one job in a single transaction.
//A failure rolls back the whole batch.
func (i *Impl) InsertRollingRows(rows []models.RollingAverageRow) error {

	tx, err := i.Db.Begin()
	if err != nil {
		log.Error(err)
		return err
	}

	stmt := tx.Stmt(sqlstmtInsertRollingRow)
	defer stmt.Close()

	for _, row := range rows {
		_, err = stmt.Exec(
			sql.Named("jobId", row.JobID),
			sql.Named("dateTime", row.Timestamp.Format(config.GetSQLDateLayout())),
			sql.Named("rolling1Hour", row.Rolling1h),
			sql.Named("rolling3Hour", row.Rolling3h),
			sql.Named("rolling4Hour", row.Rolling4h),
			sql.Named("rawValue", row.RawValue))
		if err != nil {
			log.Error(err)
			tx.Rollback()
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		log.Error(err)
		return err
	}
	return nil
}

//UpdateLastExecution advances a job's checkpoint to the latest raw timestamp observed
func (i *Impl) UpdateLastExecution(jobID int, lastExecution time.Time) error {

	_, err := sqlstmtUpdateLastExecution.Exec(
		sql.Named("lastExecution", lastExecution.Format(config.GetSQLDateLayout())),
		sql.Named("jobId", jobID))
	if err != nil {
		log.Error(err)
		return err
	}
	return nil
}

//InsertLog appends an audit log row. Job id 0 means the run itself rather than a specific job.
func (i *Impl) InsertLog(tagID, jobID, messageID int) error {
	mutexLogInserts.Lock()
	defer mutexLogInserts.Unlock()

	_, err := sqlstmtInsertLog.Exec(
		sql.Named("timestamp", time.Now().Format(config.GetLogDateLayout())),
		sql.Named("tagId", tagID),
		sql.Named("jobId", jobID),
		sql.Named("messageId", messageID))
	if err != nil {
		log.Error(err)
		return err
	}
	return nil
}

//GetLatestDate finds the newest raw reading in a source table. The handle is the
//job's or feed's own server connection, not the primary store.
func GetLatestDate(db *sql.DB, table string) (sql.NullTime, error) {

	var latest sql.NullTime
	err := db.QueryRow(sqls.GetSQLSelectLatestDate(table)).Scan(&latest)
	if err != nil {
		log.Error(err)
		return latest, err
	}
	return latest, nil
}

//GetWindowAverages computes the four window aggregates for one tick against a source table.
//The second return value reports whether a raw reading exists exactly at the tick.
func GetWindowAverages(db *sql.DB, table, valueColumn string, tick time.Time) (models.RollingAverageRow, bool, error) {

	var row models.RollingAverageRow
	var tickTime sql.NullTime

	err := db.QueryRow(sqls.GetSQLSelectWindowAverages(table, valueColumn),
		sql.Named("tick", tick),
		sql.Named("sentinel", config.GetSentinelValue())).
		Scan(&tickTime, &row.Rolling1h, &row.Rolling3h, &row.Rolling4h, &row.RawValue)
	if err != nil {
		log.Error(err)
		return row, false, err
	}
	if !tickTime.Valid {
		return row, false, nil
	}
	row.Timestamp = tickTime.Time
	return row, true, nil
}

//HasTransmissionSince reports whether a regional table holds any reading at or after the cutoff
func HasTransmissionSince(db *sql.DB, table string, cutoff time.Time) (bool, error) {

	var found sql.NullTime
	err := db.QueryRow(sqls.GetSQLSelectRegionalTransmission(table), sql.Named("cutoff", cutoff)).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		log.Error(err)
		return false, err
	}
	return true, nil
}

func formatNullString(nullString sql.NullString) string {
	if nullString.Valid {
		return nullString.String
	}
	return ""
}

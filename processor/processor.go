package processor

import (
	"database/sql"
	"emission-monitoring/config"
	"emission-monitoring/database"
	"emission-monitoring/models"
	"emission-monitoring/notifier"
	"emission-monitoring/repository"
	"emission-monitoring/sqls"
	"errors"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

//openSource opens a connection to a job's or feed's own server
var openSource = func(host string, port int, dbName, username, password string) (*sql.DB, error) {
	return database.InitDB(database.BuildConnectionString(host, port, dbName, username, password))
}

//jobContext holds the per-job state for one pass of the runner. Nothing in it
//is shared between jobs.
type jobContext struct {
	job         models.Job
	table       string
	valueColumn string
	sourceDB    *sql.DB
	latest      time.Time
	checkpoint  time.Time
}

//Run processes every enabled job once and then checks the regional feeds.
//A job's failure is logged and the runner moves on to the next job.
func Run(repo repository.Repository, notif notifier.Notifier) error {

	timer := time.Now()

	jobs, err := repo.GetJobs()
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, 0, models.MsgQueryFailed)
		return err
	}
	log.Info("Found " + strconv.Itoa(len(jobs)) + " enabled jobs")

	feeds, err := repo.GetRegionalFeeds()
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, 0, models.MsgQueryFailed)
		return err
	}

	//The newest raw timestamp seen across jobs. The regional pass compares
	//the feeds against it.
	var latestObserved time.Time

	for _, job := range jobs {
		latest, ok := runJob(repo, notif, job)
		if ok && latest.After(latestObserved) {
			latestObserved = latest
		}
	}

	if !latestObserved.IsZero() && len(jobs) > 0 {
		checkRegionalFeeds(repo, notif, feeds, jobs[0].Email, latestObserved)
	}

	log.Info("Time since run started: ", time.Since(timer))
	return nil
}

//runJob walks one job through the state machine: fetch checkpoints, compute
//rolling averages, persist, evaluate exceedances, notify, advance checkpoint.
//Any failure abandons the remaining steps for this job only.
func runJob(repo repository.Repository, notif notifier.Notifier, job models.Job) (time.Time, bool) {

	ctx := jobContext{job: job}
	var err error

	ctx.table, err = sqls.StationTableName(job.StationNumber, job.Timebase)
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, job.ID, models.MsgQueryFailed)
		return time.Time{}, false
	}
	ctx.valueColumn, err = sqls.ValueColumnName(job.ValueNumber)
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, job.ID, models.MsgQueryFailed)
		return time.Time{}, false
	}

	ctx.sourceDB, err = openSource(job.Host, 0, job.Database, job.Username, job.Password)
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, job.ID, models.MsgQueryFailed)
		return time.Time{}, false
	}
	defer ctx.sourceDB.Close()

	latest, err := repository.GetLatestDate(ctx.sourceDB, ctx.table)
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, job.ID, models.MsgLatestDateFailed)
		return time.Time{}, false
	}
	if !latest.Valid {
		//No raw data for this job yet. Nothing to compute and the
		//checkpoint stays where it is.
		log.Error("No raw data available for job " + strconv.Itoa(job.ID) + " in table " + ctx.table)
		logEvent(repo, models.TagError, job.ID, models.MsgLatestDateFailed)
		return time.Time{}, false
	}
	ctx.latest = latest.Time
	logEvent(repo, models.TagInfo, job.ID, models.MsgLatestDateFetched)

	lastRolling, err := repo.GetLatestRollingDate(job.ID)
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, job.ID, models.MsgLatestDateFailed)
		return time.Time{}, false
	}
	ctx.checkpoint = resolveCheckpoint(lastRolling, job.LastExecution, ctx.latest)

	rollingRows, err := ComputeRollingAverages(ctx.sourceDB, job.ID, ctx.table, ctx.valueColumn, ctx.checkpoint, ctx.latest)
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, job.ID, models.MsgRollingFailed)
		return time.Time{}, false
	}
	logEvent(repo, models.TagInfo, job.ID, models.MsgRollingComputed)

	if len(rollingRows) > 0 {
		err = repo.InsertRollingRows(rollingRows)
		if err != nil {
			log.Error(err)
			logEvent(repo, models.TagError, job.ID, models.MsgRollingFailed)
			return time.Time{}, false
		}
		logEvent(repo, models.TagInfo, job.ID, models.MsgRollingInserted)
	} else {
		log.Debug("No rolling rows computed for job ", job.ID)
		logEvent(repo, models.TagError, job.ID, models.MsgNoRollingData)
	}

	evalRows, err := repo.GetRollingRows(job.ID, ctx.checkpoint, ctx.latest)
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, job.ID, models.MsgQueryFailed)
		return time.Time{}, false
	}

	events := EvaluateExceedances(evalRows, job.Pollutant, job.Standard)

	if len(events) > 0 {
		reportTable := notifier.BuildTable(events, job.Pollutant, job.Unit, job.Standard)
		logEvent(repo, models.TagInfo, job.ID, models.MsgReportTableBuilt)

		err = notif.SendExceedance(job.Email, job.StackName, reportTable)
		if errors.Is(err, notifier.ErrTemplate) {
			log.Error(err)
			logEvent(repo, models.TagError, job.ID, models.MsgTemplateFailed)
		} else if err != nil {
			log.Error(err)
			logEvent(repo, models.TagError, job.ID, models.MsgExceedanceEmailFailed)
		} else {
			logEvent(repo, models.TagInfo, job.ID, models.MsgExceedanceEmailSent)
		}
		logEvent(repo, models.TagInfo, job.ID, models.MsgExceedanceProcessed)
	} else {
		logEvent(repo, models.TagInfo, job.ID, models.MsgCheckpointAdvanced)
	}

	//The checkpoint advances to the latest raw timestamp observed even when no
	//new rolling rows were computed, so an empty range is not reprocessed forever.
	err = repo.UpdateLastExecution(job.ID, ctx.latest)
	if err != nil {
		log.Error(err)
		logEvent(repo, models.TagError, job.ID, models.MsgQueryFailed)
		return time.Time{}, false
	}

	return ctx.latest, true
}

//ComputeRollingAverages advances in fixed ticks over (fromTime, toTime] and
//computes the trailing 1h/3h/4h means and the raw value for every tick that
//has a reading at exactly the tick timestamp. A source error discards all
//ticks computed so far.
func ComputeRollingAverages(sourceDB *sql.DB, jobID int, table, valueColumn string, fromTime, toTime time.Time) ([]models.RollingAverageRow, error) {

	tickSize := time.Duration(config.GetTickMinutes()) * time.Minute

	var rollingRows []models.RollingAverageRow
	for tick := fromTime.Add(tickSize); !tick.After(toTime); tick = tick.Add(tickSize) {
		row, found, err := repository.GetWindowAverages(sourceDB, table, valueColumn, tick)
		if err != nil {
			log.Error(err)
			return nil, err
		}
		if !found {
			//Readings can be sparser than the tick grid
			continue
		}
		row.JobID = jobID
		rollingRows = append(rollingRows, row)
	}
	return rollingRows, nil
}

//EvaluateExceedances returns the rows whose pollutant-specific window value is
//present and strictly greater than the standard, in the order given.
func EvaluateExceedances(rows []models.RollingAverageRow, pollutant string, standard float64) []models.ExceedanceEvent {

	var events []models.ExceedanceEvent
	for _, row := range rows {
		value := windowValue(row, models.Pollutant(pollutant))
		if value.Valid && value.Float64 > standard {
			events = append(events, models.ExceedanceEvent{Timestamp: row.Timestamp, Value: value.Float64})
		}
	}
	return events
}

//windowValue maps a pollutant to the averaging window it is judged on.
//Unknown pollutants never exceed.
func windowValue(row models.RollingAverageRow, pollutant models.Pollutant) sql.NullFloat64 {
	switch pollutant {
	case models.PollutantSO2, models.PollutantNO2:
		return row.Rolling3h
	case models.PollutantCO:
		return row.Rolling4h
	case models.PollutantDust:
		return row.Rolling1h
	case models.PollutantOpacity:
		return row.RawValue
	}
	return sql.NullFloat64{}
}

//IsStale reports whether a feed that had no reading at or after
//latest minus the stale window has gone quiet
func IsStale(hasRecentTransmission bool) bool {
	return !hasRecentTransmission
}

//checkRegionalFeeds checks every regional feed once per run against the
//newest raw timestamp observed across jobs and emails when a feed is stale.
func checkRegionalFeeds(repo repository.Repository, notif notifier.Notifier, feeds []models.RegionalFeed, email models.EmailDetails, latestObserved time.Time) {

	cutoff := latestObserved.Add(-time.Duration(config.GetStaleWindowHours()) * time.Hour)

	for _, feed := range feeds {
		feedDB, err := openSource(feed.Host, 0, feed.Database, feed.Username, feed.Password)
		if err != nil {
			log.Error(err)
			logEvent(repo, models.TagError, 0, models.MsgRegionalCheckFailed)
			continue
		}

		lastRegional, err := repository.GetLatestDate(feedDB, feed.TableName)
		if err != nil {
			log.Error(err)
			logEvent(repo, models.TagError, 0, models.MsgRegionalCheckFailed)
			feedDB.Close()
			continue
		}

		hasRecent, err := repository.HasTransmissionSince(feedDB, feed.TableName, cutoff)
		feedDB.Close()
		if err != nil {
			log.Error(err)
			logEvent(repo, models.TagError, 0, models.MsgRegionalCheckFailed)
			continue
		}

		if IsStale(hasRecent) {
			err = notif.SendStaleTransmission(email, lastRegional)
			if errors.Is(err, notifier.ErrTemplate) {
				log.Error(err)
				logEvent(repo, models.TagError, 0, models.MsgTemplateFailed)
				continue
			}
			if err != nil {
				log.Error(err)
				logEvent(repo, models.TagError, 0, models.MsgRegionalCheckFailed)
				continue
			}
			logEvent(repo, models.TagInfo, 0, models.MsgStaleEmailSent)
		} else {
			logEvent(repo, models.TagInfo, 0, models.MsgRegionalTransmissionOK)
		}
	}
}

//resolveCheckpoint picks the engine's exclusive start. The rolling cache is
//authoritative; a job that has never produced rolling rows starts from its
//persisted last execution, and a brand-new job backfills one longest window.
func resolveCheckpoint(lastRolling, lastExecution sql.NullTime, latest time.Time) time.Time {
	if lastRolling.Valid {
		return lastRolling.Time
	}
	if lastExecution.Valid {
		return lastExecution.Time
	}
	return latest.Add(-4 * time.Hour)
}

//logEvent mirrors an audit row to the system log table. The failure of the
//audit insert itself is only file-logged.
func logEvent(repo repository.Repository, tagID, jobID, messageID int) {
	err := repo.InsertLog(tagID, jobID, messageID)
	if err != nil {
		log.Error(err)
	}
}

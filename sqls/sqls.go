package sqls

import (
	"emission-monitoring/config"
	"errors"
	"fmt"
)

//GetSQLSelectJobs returns the SQL statement used to retrieve the enabled jobs with their server, station, parameter, stack and email details
func GetSQLSelectJobs() string {
	return `SELECT
    j.id,
    s.host_name,
    s.user_name,
    s.password,
    s.database_name,
    stn.station_number,
    j.timebase,
    j.value_number,
    p.parameter_name,
    p.unit_name,
    j.pollutant_standards,
    st.stack_name,
    r.designated_email,
    r.cc,
    r.bcc,
    ed.subject,
    ed.body,
    ed.email_address,
    ed.email_password,
    ed.smtp,
    ed.port,
    j.last_execution
FROM ` + config.GetJobTableName() + ` j
INNER JOIN em_server s ON j.server_id = s.id
INNER JOIN em_station stn ON j.station_id = stn.id
INNER JOIN em_parameter p ON j.parameter_id = p.id
INNER JOIN em_stack st ON j.stack_id = st.id
INNER JOIN em_email_details ed ON j.email_details_id = ed.id
INNER JOIN em_recipients r ON j.recipients_id = r.id
WHERE j.enable = 1
ORDER BY j.id`
}

//GetSQLSelectRegionalFeeds returns the SQL statement used to retrieve the regional feed definitions
func GetSQLSelectRegionalFeeds() string {
	return "SELECT host_name, user_name, password, database_name, table_name FROM " + config.GetRegionalDetailsTableName()
}

//GetSQLSelectLatestDate returns the SQL statement used to find the newest raw reading in a station table
func GetSQLSelectLatestDate(table string) string {
	return "SELECT MAX(Date_Time) FROM " + table
}

//GetSQLSelectLatestRollingDate returns the SQL statement used to find a job's rolling-average checkpoint
func GetSQLSelectLatestRollingDate() string {
	return "SELECT MAX(date_time) FROM " + config.GetRollingAverageTableName() + " WHERE job_id = @jobId"
}

//GetSQLSelectWindowAverages returns the SQL statement used to compute the window aggregates for one tick.
//The table and value column are identifiers built by StationTableName/ValueColumnName; everything else is bound.
func GetSQLSelectWindowAverages(table, valueColumn string) string {
	return fmt.Sprintf(`SELECT
    (SELECT Date_Time
    FROM %[1]s
    WHERE Date_Time = @tick) AS date_time,

    (SELECT AVG(%[2]s)
    FROM %[1]s
    WHERE Date_Time <= @tick
    AND (Date_Time > DATEADD(hour, -1, @tick))
    AND (%[2]s != @sentinel)) AS rolling_1hour_ave,

    (SELECT AVG(%[2]s)
    FROM %[1]s
    WHERE Date_Time <= @tick
    AND (Date_Time > DATEADD(hour, -3, @tick))
    AND (%[2]s != @sentinel)) AS rolling_3hour_ave,

    (SELECT AVG(%[2]s)
    FROM %[1]s
    WHERE Date_Time <= @tick
    AND (Date_Time > DATEADD(hour, -4, @tick))
    AND (%[2]s != @sentinel)) AS rolling_4hour_ave,

    (SELECT TOP(1) %[2]s
    FROM %[1]s
    WHERE Date_Time = @tick) AS raw_value`, table, valueColumn)
}

//GetSQLInsertRollingRow returns the SQL statement used to insert one rolling-average row
func GetSQLInsertRollingRow() string {
	return "INSERT INTO " + config.GetRollingAverageTableName() +
		" (job_id, date_time, rolling_1hour, rolling_3hour, rolling_4hour, raw_value)" +
		" VALUES (@jobId, @dateTime, @rolling1Hour, @rolling3Hour, @rolling4Hour, @rawValue)"
}

//GetSQLSelectRollingRows returns the SQL statement used to read back the rolling rows for an evaluation range
func GetSQLSelectRollingRows() string {
	return "SELECT date_time, rolling_1hour, rolling_3hour, rolling_4hour, raw_value" +
		" FROM " + config.GetRollingAverageTableName() +
		" WHERE job_id = @jobId AND date_time > @fromTime AND date_time <= @toTime" +
		" ORDER BY date_time ASC"
}

//GetSQLUpdateLastExecution returns the SQL statement used to advance a job's checkpoint
func GetSQLUpdateLastExecution() string {
	return "UPDATE " + config.GetJobTableName() + " SET last_execution = @lastExecution WHERE id = @jobId"
}

//GetSQLInsertLog returns the SQL statement used to append an audit log row
func GetSQLInsertLog() string {
	return "INSERT INTO " + config.GetSystemLogTableName() +
		" (timestamp, tag_id, job_id, message_id) VALUES (@timestamp, @tagId, @jobId, @messageId)"
}

//GetSQLSelectRegionalTransmission returns the SQL statement used to check a regional table for recent rows
func GetSQLSelectRegionalTransmission(table string) string {
	return "SELECT TOP(1) Date_Time FROM " + table + " WHERE Date_Time >= @cutoff"
}

//StationTableName builds the raw reading table name S<station>T<timebase> from the
//configured station number and timebase. Both must be numeric as they end up in
//query text as identifiers.
func StationTableName(stationNumber, timebase string) (string, error) {
	if !isDigits(stationNumber) || !isDigits(timebase) {
		return "", errors.New("station number and timebase must be numeric: S" + stationNumber + "T" + timebase)
	}
	return "S" + pad(stationNumber, 3) + "T" + pad(timebase, 2), nil
}

//ValueColumnName builds the raw value column name from the job's value index
func ValueColumnName(valueNumber int) (string, error) {
	if valueNumber < 1 {
		return "", fmt.Errorf("value number must be positive, got %d", valueNumber)
	}
	return fmt.Sprintf("Value%d", valueNumber), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pad(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

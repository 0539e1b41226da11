package models

import (
	"database/sql"
	"time"
)

//Pollutant is the closed set of parameter names a job can monitor
type Pollutant string

const (
	PollutantSO2     Pollutant = "SO2"
	PollutantNO2     Pollutant = "NO2"
	PollutantCO      Pollutant = "CO"
	PollutantDust    Pollutant = "DUST"
	PollutantOpacity Pollutant = "OPACITY"
)

//Audit tag ids written to the em_system_log table
const (
	TagInfo  = 1
	TagError = 2
)

//Audit message ids written to the em_system_log table
const (
	MsgQueryFailed            = 1
	MsgTemplateLoaded         = 2
	MsgTemplateFailed         = 3
	MsgExceedanceEmailSent    = 4
	MsgExceedanceEmailFailed  = 5
	MsgLatestDateFetched      = 6
	MsgLatestDateFailed       = 7
	MsgRollingComputed        = 8
	MsgRollingFailed          = 9
	MsgReportTableBuilt       = 10
	MsgReportTableFailed      = 11
	MsgRollingInserted        = 12
	MsgNoRollingData          = 13
	MsgCheckpointAdvanced     = 14
	MsgExceedanceProcessed    = 15
	MsgStaleEmailSent         = 16
	MsgRegionalCheckFailed    = 17
	MsgRegionalTransmissionOK = 18
)

//Job defines one monitored (station, parameter, stack) triple as joined from the configuration tables
type Job struct {
	ID            int
	Host          string
	Username      string
	Password      string
	Database      string
	StationNumber string
	Timebase      string
	ValueNumber   int
	Pollutant     string
	Unit          string
	Standard      float64
	StackName     string
	LastExecution sql.NullTime
	Email         EmailDetails
}

//EmailDetails defines the SMTP routing stored per job
type EmailDetails struct {
	Address  string
	Password string
	SMTPHost string
	Port     int
	To       string
	Cc       string
	Bcc      string
	Subject  string
	Body     string
}

//RollingAverageRow defines one 5-minute tick in the em_rolling_ave cache
type RollingAverageRow struct {
	JobID     int
	Timestamp time.Time
	Rolling1h sql.NullFloat64
	Rolling3h sql.NullFloat64
	Rolling4h sql.NullFloat64
	RawValue  sql.NullFloat64
}

//RegionalFeed defines an independently polled regional mirror checked for transmission staleness
type RegionalFeed struct {
	Host      string
	Username  string
	Password  string
	Database  string
	TableName string
}

//ExceedanceEvent is a rolling row whose pollutant-specific window exceeded the job's standard. Derived, never persisted.
type ExceedanceEvent struct {
	Timestamp time.Time
	Value     float64
}

package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tkanos/gonfig"
)

type Configuration struct {
	DB_SERVER         string
	DB_PORT           int
	DB_DATABASE       string
	DB_USERNAME       string
	DB_PASSWORD       string
	DEBUG_LOGGING     bool
	MAX_LOGFILE_SIZE  int64
	TEMPLATE_LOCATION string
	LOGO_LOCATION     string
}

func GetConfig(params ...string) Configuration {
	configuration := Configuration{}
	env := ""
	if len(params) > 0 {
		env = params[0]
	}
	fileName := fmt.Sprintf("./%s_ems_config.json", env)

	gonfig.GetConf(fileName, &configuration)

	log.Info("Using configurations in config file with prefix: ", env)

	return configuration
}

//GetSQLDateLayout returns the timestamp layout used in the rolling-average table
func GetSQLDateLayout() string {
	return "2006-01-02 15:04:05"
}

//GetLogDateLayout returns the timestamp layout used in the system log table
func GetLogDateLayout() string {
	return "2006-01-02 15:04"
}

//GetStaleDateLayout returns the layout used for the last transmission time in the stale alert
func GetStaleDateLayout() string {
	return "Monday, 02 January, 2006 03:04 PM"
}

//GetFileDateLayout returns the date layout used when archiving log files
func GetFileDateLayout() string {
	return "20060102150405"
}

//GetRollingAverageTableName returns the name of the rolling-average cache table
func GetRollingAverageTableName() string {
	return "em_rolling_ave"
}

//GetJobTableName returns the name of the job configuration table
func GetJobTableName() string {
	return "em_job"
}

//GetSystemLogTableName returns the name of the audit log table
func GetSystemLogTableName() string {
	return "em_system_log"
}

//GetRegionalDetailsTableName returns the name of the regional feed configuration table
func GetRegionalDetailsTableName() string {
	return "em_regional_details"
}

//GetSentinelValue returns the reserved reading value meaning invalid/missing
func GetSentinelValue() float64 {
	return -9999
}

//GetTickMinutes returns the rolling-average grid size in minutes
func GetTickMinutes() int {
	return 5
}

//GetStaleWindowHours returns the trailing window checked for regional transmission
func GetStaleWindowHours() int {
	return 1
}

//GetExceedanceTemplateName returns the file name of the exceedance report template
func GetExceedanceTemplateName() string {
	return "ems_exceedance.html"
}

//GetStaleTemplateName returns the file name of the stale transmission template
func GetStaleTemplateName() string {
	return "ems_last_transmission.html"
}

//GetLogFileName return the name of the log file
func GetLogFileName() string {
	return "./out/emission-monitoring.log"
}

//GetLogFileNameWithoutExtension return the name of the log file without the extension
func GetLogFileNameWithoutExtension() string {
	return "./out/emission-monitoring"
}

//GetLogFileExtension return the extension of the log file
func GetLogFileExtension() string {
	return "log"
}

//GetDefaultEnvironment returns the default environment to load configurations for
func GetDefaultEnvironment() string {
	return "PROD"
}

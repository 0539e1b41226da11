package main

import (
	"emission-monitoring/config"
	"emission-monitoring/database"
	"emission-monitoring/logger"
	"emission-monitoring/notifier"
	"emission-monitoring/processor"
	"emission-monitoring/repository"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	sha1ver   string // sha1 revision used to build the program
	buildTime string // when the executable was built
	version   string // custom version number of the program

	flgVersion bool
)

func main() {

	parseCmdLineFlags()

	//Store the current time before running the program in order to track execution time
	timer := time.Now()

	//The environment is given as a parameter (defaults to PROD)
	environment := getEnvironment()

	//Get the configurations for the given environment
	configurations := config.GetConfig(environment)

	// Create the log file if it doesn't exist. Append to it if it already exists.
	logFileLogger, err := logger.NewLogger(configurations.MAX_LOGFILE_SIZE)
	defer logFileLogger.Close()

	if configurations.DEBUG_LOGGING {
		log.SetLevel(log.DebugLevel)
	}

	runId := uuid.NewString()
	logFileLogger.Info("Using configurations from config files with prefix: " + environment)
	logFileLogger.Info("version = " + version)
	logFileLogger.Info("buildTime = " + buildTime)
	logFileLogger.Info("sha1Version = " + sha1ver)
	logFileLogger.Info("Starting run " + runId)
	log.AddHook(&runIdHook{runId: runId})

	connectionString, validatedOK := getConnectionString(configurations, &logFileLogger)
	if !validatedOK {
		return
	}

	db, err := database.InitDB(connectionString)
	if err != nil {
		//Only log in file as the DB is not available
		logFileLogger.Fatal(err)
	}
	defer db.Close()

	repo := repository.NewRepository(db)
	err = repo.InitStatements()
	if err != nil {
		logFileLogger.Fatal(err)
	}
	defer repo.Close()

	notif := notifier.NewNotifier(configurations.TEMPLATE_LOCATION, configurations.LOGO_LOCATION)

	err = processor.Run(repo, notif)
	if err != nil {
		logFileLogger.Error(err)
	}

	//Print the time it took to run the program
	logFileLogger.Info(" Execution time: " + time.Since(timer).String())
}

func getConnectionString(configurations config.Configuration, logFileLogger *logger.Logger) (string, bool) {

	if configurations.DB_USERNAME == "" {
		(*logFileLogger).ErrorWithText("DB_USERNAME must be specified in the configuration file")
		return "", false
	}
	if configurations.DB_PASSWORD == "" {
		(*logFileLogger).ErrorWithText("DB_PASSWORD must be specified in the configuration file")
		return "", false
	}
	if configurations.DB_SERVER == "" {
		(*logFileLogger).ErrorWithText("DB_SERVER must be specified in the configuration file")
		return "", false
	}
	if configurations.DB_DATABASE == "" {
		(*logFileLogger).ErrorWithText("DB_DATABASE must be specified in the configuration file")
		return "", false
	}

	return database.BuildConnectionString(
		configurations.DB_SERVER,
		configurations.DB_PORT,
		configurations.DB_DATABASE,
		configurations.DB_USERNAME,
		configurations.DB_PASSWORD), true
}

func getEnvironment() string {
	environment := config.GetDefaultEnvironment()
	if len(os.Args) > 1 {
		environment = os.Args[1]
	}
	return environment
}

func parseCmdLineFlags() {
	flag.BoolVar(&flgVersion, "version", false, "if true, print version and exit")
	flag.Parse()
	if flgVersion {
		fmt.Printf("Version %s - build on %s from sha1 %s\n", version, buildTime, sha1ver)
		os.Exit(0)
	}
}

//runIdHook stamps every log entry with the id of the current run so the file
//log can be correlated with the em_system_log rows
type runIdHook struct {
	runId string
}

func (h *runIdHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *runIdHook) Fire(entry *log.Entry) error {
	entry.Data["run_id"] = h.runId
	return nil
}

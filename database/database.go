package database

import (
	"database/sql"
	"fmt"
	"net/url"

	log "github.com/sirupsen/logrus"

	_ "github.com/microsoft/go-mssqldb"
)

// InitDB opens a connection to the database
func InitDB(dbConnectionString string) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", dbConnectionString)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	return db, nil
}

// BuildConnectionString assembles an sqlserver URL from the server details
func BuildConnectionString(host string, port int, database, username, password string) string {
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(username, password),
		Host:     host,
		RawQuery: url.Values{"database": {database}}.Encode(),
	}
	if port > 0 {
		u.Host = fmt.Sprintf("%s:%d", host, port)
	}
	return u.String()
}

package utils

import (
	"database/sql"
	"emission-monitoring/config"
	"fmt"
	"strconv"
	"strings"
)

//SplitRecipients splits a comma-separated recipient list, dropping empty entries
func SplitRecipients(list string) []string {
	var recipients []string
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			recipients = append(recipients, entry)
		}
	}
	return recipients
}

//FormatValue renders a measured value with two decimals for the report table
func FormatValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

//FormatStandard renders a regulatory standard without trailing zeros
func FormatStandard(standard float64) string {
	return strconv.FormatFloat(standard, 'f', -1, 64)
}

//FormatStaleTimestamp renders the last successful transmission time for the stale alert
func FormatStaleTimestamp(lastRegional sql.NullTime) string {
	if !lastRegional.Valid {
		return "never"
	}
	return lastRegional.Time.Format(config.GetStaleDateLayout())
}

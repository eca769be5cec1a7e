package google

import (
	"fmt"
	"strings"

	"driverdash/internal/auth"
)

// parseDrivers converts a values matrix into credentials. The first row must
// be a header naming ID, Password and Name columns in any order.
func parseDrivers(values [][]any) ([]auth.Credential, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	colID := indexOf(headers, "ID")
	colPassword := indexOf(headers, "Password")
	colName := indexOf(headers, "Name")

	var missing []string
	if colID == -1 {
		missing = append(missing, "ID")
	}
	if colPassword == -1 {
		missing = append(missing, "Password")
	}
	if colName == -1 {
		missing = append(missing, "Name")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected drivers header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	var out []auth.Credential
	for _, raw := range values[1:] {
		row := toStrings(raw)
		id := safeGet(row, colID)
		secret := safeGet(row, colPassword)
		if id == "" || secret == "" {
			continue
		}
		out = append(out, auth.Credential{ID: id, Secret: secret, Name: safeGet(row, colName)})
	}
	return out, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, s := range arr {
		if strings.EqualFold(s, target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

package market

import "encoding/json"

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(body string, dest interface{}) error {
	if body == "" {
		return nil
	}
	return json.Unmarshal([]byte(body), dest)
}

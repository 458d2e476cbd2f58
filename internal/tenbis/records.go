package tenbis

import (
	"bytes"
	"encoding/json"
	"strings"
)

// RawTransaction is one entry of the UserTransactionsReport "Transactions"
// array, as sent by 10bis. Values are kept as text and validated per record
// by the classifier, so one malformed entry never fails the whole report.
type RawTransaction struct {
	TransactionID     FlexString `json:"TransactionId"`
	TransactionDate   string     `json:"TransactionDate"`
	ResName           string     `json:"ResName"`
	ResLogoURL        string     `json:"ResLogoUrl"`
	TransactionAmount FlexString `json:"TransactionAmount"`
	TransactionType   FlexString `json:"TransactionType"`
	PaymentMethod     FlexString `json:"PaymentMethod"`
}

// FlexString accepts a JSON string, number, boolean or null and keeps its
// text. 10bis is not consistent about quoting identifiers. Objects and
// arrays decode to the empty string.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || data[0] == '{' || data[0] == '[' {
		*f = ""
		return nil
	}
	if bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")) {
		*f = FlexString(data)
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

type transactionsReport struct {
	Transactions []RawTransaction `json:"Transactions"`
}

type loginRequest struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

type loginResponse struct {
	UserData struct {
		EncryptedUserID string `json:"EncryptedUserId"`
	} `json:"UserData"`
}

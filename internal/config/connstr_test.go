package config

import (
	"fmt"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
)

func TestMakeConnStr(t *testing.T) {
	tests := []struct {
		name        string
		conf        Database
		wantConnStr string
		assertErr   assert.ErrorAssertionFunc
	}{
		{
			name: "Make connection string",
			conf: Database{
				Host: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_host",
				},
				User: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_user",
				},
				Password: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_password",
				},
				Name: "my_db_name",
				Port: "5432",
			},
			wantConnStr: "host=my_host user=my_user password=my_password dbname=my_db_name port=5432",
			assertErr:   assert.NoError,
		},
		{
			name: "Make connection string with ssl mode",
			conf: Database{
				Host:     commoncfg.SourceRef{Source: "embedded", Value: "db.workzen.internal"},
				User:     commoncfg.SourceRef{Source: "embedded", Value: "hrms"},
				Password: commoncfg.SourceRef{Source: "embedded", Value: "secret"},
				Name:     "hrms_client",
				Port:     "5432",
				SSLMode:  "require",
			},
			wantConnStr: "host=db.workzen.internal user=hrms password=secret dbname=hrms_client port=5432 sslmode=require",
			assertErr:   assert.NoError,
		},
		{
			name: "Error - invalid host source",
			conf: Database{
				Host: commoncfg.SourceRef{
					Source: "invalid-source",
					Value:  "my_host",
				},
				User: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_user",
				},
				Password: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_password",
				},
				Name: "my_db_name",
				Port: "5432",
			},
			wantConnStr: "",
			assertErr:   assert.Error,
		},
		{
			name: "Error - invalid user source",
			conf: Database{
				Host: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_host",
				},
				User: commoncfg.SourceRef{
					Source: "invalid-source",
					Value:  "my_user",
				},
				Password: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_password",
				},
				Name: "my_db_name",
				Port: "5432",
			},
			wantConnStr: "",
			assertErr:   assert.Error,
		},
		{
			name: "Error - invalid password source",
			conf: Database{
				Host: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_host",
				},
				User: commoncfg.SourceRef{
					Source: "embedded",
					Value:  "my_user",
				},
				Password: commoncfg.SourceRef{
					Source: "invalid-source",
					Value:  "my_password",
				},
				Name: "my_db_name",
				Port: "5432",
			},
			wantConnStr: "",
			assertErr:   assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connStr, err := MakeConnStr(tt.conf)
			if !tt.assertErr(t, err, fmt.Sprintf("MakeConnStr() error = %v", err)) || err != nil {
				return
			}

			assert.Equal(t, tt.wantConnStr, connStr, "MakeConnStr() = %v", connStr)
		})
	}
}

func TestMakeValKeyOptions(t *testing.T) {
	tests := []struct {
		name      string
		conf      ValKey
		want      []string
		wantUser  string
		assertErr assert.ErrorAssertionFunc
	}{
		{
			name: "Embedded credentials",
			conf: ValKey{
				Host:     commoncfg.SourceRef{Source: "embedded", Value: "valkey:6379"},
				User:     commoncfg.SourceRef{Source: "embedded", Value: "default"},
				Password: commoncfg.SourceRef{Source: "embedded", Value: "secret"},
			},
			want:      []string{"valkey:6379"},
			wantUser:  "default",
			assertErr: assert.NoError,
		},
		{
			name: "Error - invalid host source",
			conf: ValKey{
				Host:     commoncfg.SourceRef{Source: "invalid-source", Value: "valkey:6379"},
				User:     commoncfg.SourceRef{Source: "embedded", Value: "default"},
				Password: commoncfg.SourceRef{Source: "embedded", Value: "secret"},
			},
			assertErr: assert.Error,
		},
		{
			name: "Error - missing password file",
			conf: ValKey{
				Host:     commoncfg.SourceRef{Source: "embedded", Value: "valkey:6379"},
				User:     commoncfg.SourceRef{Source: "embedded", Value: "default"},
				Password: commoncfg.SourceRef{Source: "file", File: commoncfg.CredentialFile{Path: "/nonexistent/file"}},
			},
			assertErr: assert.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := MakeValKeyOptions(tt.conf)
			if !tt.assertErr(t, err) || err != nil {
				return
			}

			assert.Equal(t, tt.want, opts.InitAddress)
			assert.Equal(t, tt.wantUser, opts.Username)
			assert.Nil(t, opts.TLSConfig)
		})
	}
}

func TestSessionFilePath(t *testing.T) {
	got, err := SessionFilePath(SessionStore{Path: "/var/lib/hrms/session.json"})
	assert.NoError(t, err)
	assert.Equal(t, "/var/lib/hrms/session.json", got)

	t.Setenv("HOME", "/home/jane")
	got, err = SessionFilePath(SessionStore{})
	assert.NoError(t, err)
	assert.Equal(t, "/home/jane/.hrms-client/session.json", got)
}

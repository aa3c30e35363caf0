package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternhq/tern/pkg/schema"
)

const usersDDL = `
-- user accounts
CREATE TABLE users (
    id BIGINT NOT NULL PRIMARY KEY,
    email VARCHAR(254) NOT NULL,
    display_name TEXT,
    balance DECIMAL(10, 2) DEFAULT 0,
    status ENUM('active', 'suspended') NOT NULL DEFAULT 'active',
    created_at TIMESTAMP NOT NULL,
    birthday DATE,
    UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS sessions (
    token CHAR(64) NOT NULL,
    user_id BIGINT NOT NULL,
    PRIMARY KEY (token),
    FOREIGN KEY (user_id) REFERENCES users(id)
);
`

func TestSQLParseCreateTable(t *testing.T) {
	model, err := NewSQL().Parse([]byte(usersDDL))
	require.NoError(t, err)
	assert.Equal(t, schema.FormatSQL, model.Format)
	require.Len(t, model.Nodes, 2)

	users := model.Nodes[0]
	assert.Equal(t, "users", users.Name)
	require.Len(t, users.Fields, 7)

	id := users.Fields[0]
	assert.Equal(t, schema.ScalarInt64, id.Type.Scalar)
	assert.True(t, id.Required)

	email := users.Fields[1]
	assert.Equal(t, schema.ScalarString, email.Type.Scalar)
	require.NotNil(t, email.Type.Constraints)
	assert.Equal(t, 254, *email.Type.Constraints.MaxLength)

	displayName := users.Fields[2]
	assert.False(t, displayName.Required)
	assert.Nil(t, displayName.Type.Constraints)

	balance := users.Fields[3]
	assert.Equal(t, schema.ScalarDecimal, balance.Type.Scalar)
	assert.True(t, balance.HasDefault)
	assert.Equal(t, "0", balance.Default)

	status := users.Fields[4]
	assert.Equal(t, []string{"active", "suspended"}, status.Type.Constraints.Enum)
	assert.Equal(t, "active", status.Default)
	assert.True(t, status.Required)

	assert.Equal(t, schema.ScalarTimestamp, users.Fields[5].Type.Scalar)
	assert.Equal(t, schema.ScalarDate, users.Fields[6].Type.Scalar)

	sessions := model.Nodes[1]
	assert.Equal(t, "sessions", sessions.Name)
	require.Len(t, sessions.Fields, 2)
}

func TestSQLParseQuotedIdentifiers(t *testing.T) {
	raw := []byte("CREATE TABLE \"audit log\" (\n  `event id` INTEGER NOT NULL,\n  payload BLOB\n);")
	model, err := NewSQL().Parse(raw)
	require.NoError(t, err)
	require.Len(t, model.Nodes, 1)

	tbl := model.Nodes[0]
	assert.Equal(t, "audit log", tbl.Name)
	assert.Equal(t, "event id", tbl.Fields[0].Name)
	assert.Equal(t, schema.ScalarInt32, tbl.Fields[0].Type.Scalar)
	assert.Equal(t, schema.ScalarBytes, tbl.Fields[1].Type.Scalar)
}

func TestSQLParseSchemaQualifiedName(t *testing.T) {
	model, err := NewSQL().Parse([]byte("CREATE TABLE billing.invoices (id SERIAL NOT NULL);"))
	require.NoError(t, err)
	assert.Equal(t, "invoices", model.Nodes[0].Name)
}

func TestSQLParseNoTables(t *testing.T) {
	_, err := NewSQL().Parse([]byte("DROP TABLE users;"))
	require.Error(t, err)
	var perr *schema.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, schema.FormatSQL, perr.Format)
}

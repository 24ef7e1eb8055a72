package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/pocket/internal/importer"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParse_Account(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE

Dados da conta
Saldo contabilístico;1.000,00 EUR

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	stmt, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 2)

	assert.Equal(t, "cgd-account", stmt.Format)
	assert.Equal(t, "UTF-8", stmt.Charset)

	assert.Equal(t, date(2026, 1, 30), stmt.Rows[0].Date)
	assert.Equal(t, "INSTITUTO GESTAO FINA", stmt.Rows[0].Description)
	assert.True(t, amount("588.74").Equal(stmt.Rows[0].Amount))
	assert.Equal(t, transaction.TypeExpense, stmt.Rows[0].Type)

	assert.Equal(t, date(2026, 1, 9), stmt.Rows[1].Date)
	assert.True(t, amount("8608.52").Equal(stmt.Rows[1].Amount))
	assert.Equal(t, transaction.TypeIncome, stmt.Rows[1].Type)
}

func TestParse_Statement(t *testing.T) {
	csv := `Consultar extrato - 15-02-2026 : 0829015676030
Nome empresa ;VIBRANTGARDEN UNIPESSOAL,LDA
Saldo contabilístico final ;41.393,66

Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;Saldo contabilístico após movimento ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;41.393,66;
04-02-2026;04-02-2026;SIBS ;TFI Wise ;4.324,06;  ;51.302,85;
`

	stmt, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 2)

	assert.Equal(t, "cgd-statement", stmt.Format)
	assert.Equal(t, "PAGAMENTO TSU", stmt.Rows[0].Description)
	assert.True(t, amount("608.13").Equal(stmt.Rows[0].Amount))
	assert.Equal(t, transaction.TypeExpense, stmt.Rows[0].Type)
	assert.True(t, amount("4324.06").Equal(stmt.Rows[1].Amount))
	assert.Equal(t, transaction.TypeIncome, stmt.Rows[1].Type)
}

func TestParse_Card(t *testing.T) {
	csv := `Consultar saldos e movimentos de cartões - 15-02-2026
Conta cartão ;4163 **** **** 8016 - EUR - Business Débito

Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR         GONDOMAR ;64,00 ; ;
31-12-2025 ;29-12-2025 ;REFUND AMAZON ; ;25,00 ;
 ; ; ; ;Página 1/2 ;
`

	stmt, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 2)

	assert.Equal(t, "cgd-card", stmt.Format)
	assert.Equal(t, date(2025, 12, 16), stmt.Rows[0].Date)
	assert.Equal(t, "PA GONDOMAR         GONDOMAR", stmt.Rows[0].Description)
	assert.True(t, amount("64").Equal(stmt.Rows[0].Amount))
	assert.Equal(t, transaction.TypeExpense, stmt.Rows[0].Type)

	assert.True(t, amount("25").Equal(stmt.Rows[1].Amount))
	assert.Equal(t, transaction.TypeIncome, stmt.Rows[1].Type)
}

func TestParse_Generic(t *testing.T) {
	csv := "Date,Description,Amount\n2026-03-02,\"Coffee, Lisbon\",-3.50\n2026-03-01,Salary,\"2,500.00\"\n"

	stmt, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 2)

	assert.Equal(t, "generic", stmt.Format)
	assert.Equal(t, "Coffee, Lisbon", stmt.Rows[0].Description)
	assert.Equal(t, date(2026, 3, 2), stmt.Rows[0].Date)
	assert.True(t, amount("3.5").Equal(stmt.Rows[0].Amount))
	assert.Equal(t, transaction.TypeExpense, stmt.Rows[0].Type)
	assert.True(t, amount("2500").Equal(stmt.Rows[1].Amount))
	assert.Equal(t, transaction.TypeIncome, stmt.Rows[1].Type)
}

func TestParse_Latin1(t *testing.T) {
	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"

	latin1, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	stmt, err := importer.Parse(bytes.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 1)

	assert.Equal(t, "CAFÉ CENTRAL", stmt.Rows[0].Description)
	assert.NotEqual(t, "UTF-8", stmt.Charset)
}

func TestParse_UTF8BOM(t *testing.T) {
	csv := "\xEF\xBB\xBFData mov.;Descrição;Montante\n30-01-2026;TEST;-1,00\n"

	stmt, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 1)
	assert.Equal(t, "UTF-8", stmt.Charset)
}

func TestParse_DifferentColumnOrder(t *testing.T) {
	csv := `Random;MetaData
Montante;Descrição;Data mov.;Ignored
-10,00;TEST_ORDER;30-01-2026;XXX
`

	stmt, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 1)

	assert.Equal(t, "TEST_ORDER", stmt.Rows[0].Description)
	assert.True(t, amount("10").Equal(stmt.Rows[0].Amount))
}

func TestParse_Rows(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		rows    int
		wantErr string
	}{
		{
			name:    "empty file",
			csv:     "",
			wantErr: "no known statement format",
		},
		{
			name: "header only",
			csv:  "Data mov.;Data-valor;Descrição;Montante",
			rows: 0,
		},
		{
			name:    "missing description",
			csv:     "Data mov.;Descrição;Montante\n30-01-2026;;-10,00\n",
			wantErr: "line 2: missing description",
		},
		{
			name: "footer rows skipped",
			csv:  "Data mov.;Descrição;Montante\n30-01-2026;TEST;-10,00\nTotais;;;;\n",
			rows: 1,
		},
		{
			name: "zero amount skipped",
			csv:  "Data mov.;Descrição;Montante\n30-01-2026;TEST;0,00\n",
			rows: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := importer.Parse(strings.NewReader(tt.csv))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, stmt.Rows, tt.rows)
		})
	}
}

func TestParse_LargeAmount(t *testing.T) {
	csv := "Data mov.;Descrição;Montante\n30-01-2026;BIG TRANSFER;-1.234.567,89\n"

	stmt, err := importer.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, stmt.Rows, 1)

	assert.True(t, amount("1234567.89").Equal(stmt.Rows[0].Amount))
}

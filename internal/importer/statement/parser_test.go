package statement_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/closer/internal/encoding"
	"github.com/MrJamesThe3rd/closer/internal/importer/statement"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_Conta(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE
NIF;"=""123"""

Dados da conta
Conta;0000 - EUR - Conta Extracto
Saldo contabilístico;1.000,00 EUR
Saldo disponível;1.000,00 EUR

Dados da consulta
Período;Últimos 90 dias
Intervalo de;01-01-2026 a 31-01-2026
Tipos de movimento;Todos

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, date(2026, 1, 30), lines[0].Date)
	assert.Equal(t, "INSTITUTO GESTAO FINA", lines[0].Description)
	assert.Equal(t, int64(58874), lines[0].Amount)
	assert.True(t, lines[0].Debit)

	assert.Equal(t, date(2026, 1, 9), lines[1].Date)
	assert.Equal(t, "TFI Wise", lines[1].Description)
	assert.Equal(t, int64(860852), lines[1].Amount)
	assert.False(t, lines[1].Debit)
}

func TestParser_Extrato(t *testing.T) {
	csv := `Consultar extrato - 15-02-2026 : 0829015676030
Nome empresa ;VIBRANTGARDEN UNIPESSOAL,LDA
NIF ;517948974
Conta ;0829015676030 - EUR - Conta Extracto
Intervalo de ;01-02-2026 a 14-02-2026
Tipos de movimento ;Todos
Saldo contabilístico Inicial ;48.825,46
Saldo contabilístico final ;41.393,66

Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;Saldo contabilístico após movimento ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;41.393,66;
04-02-2026;04-02-2026;SIBS ;TFI Wise ;4.324,06;  ;51.302,85;
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, date(2026, 2, 13), lines[0].Date)
	assert.Equal(t, "PAGAMENTO TSU", lines[0].Description)
	assert.Equal(t, int64(60813), lines[0].Amount)
	assert.True(t, lines[0].Debit)

	assert.Equal(t, date(2026, 2, 4), lines[1].Date)
	assert.Equal(t, "TFI Wise", lines[1].Description)
	assert.Equal(t, int64(432406), lines[1].Amount)
	assert.False(t, lines[1].Debit)
}

func TestParser_Cartao(t *testing.T) {
	csv := `Consultar saldos e movimentos de cartões - 15-02-2026
Nome empresa ;VIBRANTGARDEN UNIPESSOAL,LDA
NIF ;517948974

Conta cartão ;4163 **** **** 8016 - EUR - Business Débito
Tipo de movimentos ;Conta à ordem
Desde ;15/12/2025

Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR         GONDOMAR ;64,00 ; ;
31-12-2025 ;29-12-2025 ;UBER   *TRIP             HELP.UBER.COMNL ;47,91 ; ;
 ; ; ; ;Página 1/2 ;
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, date(2025, 12, 16), lines[0].Date)
	assert.Equal(t, "PA GONDOMAR         GONDOMAR", lines[0].Description)
	assert.Equal(t, int64(6400), lines[0].Amount)
	assert.True(t, lines[0].Debit)

	assert.Equal(t, date(2025, 12, 31), lines[1].Date)
	assert.Equal(t, "UBER   *TRIP             HELP.UBER.COMNL", lines[1].Description)
	assert.Equal(t, int64(4791), lines[1].Amount)
	assert.True(t, lines[1].Debit)
}

func TestParser_CartaoCredit(t *testing.T) {
	csv := `Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;REFUND AMAZON ;  ;25,00 ;
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, int64(2500), lines[0].Amount)
	assert.False(t, lines[0].Debit)
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"

	encoder := charmap.Windows1252.NewEncoder()
	latin1Bytes, err := encoder.Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	p := statement.NewParser()
	lines, err := p.Parse(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, "CAFÉ CENTRAL", lines[0].Description)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Random;MetaData
Montante;Descrição;Data mov.;Ignored
-10,00;TEST_ORDER;30-01-2026;XXX
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, "TEST_ORDER", lines[0].Description)
	assert.Equal(t, int64(1000), lines[0].Amount)
}

func TestParser_EmptyFile(t *testing.T) {
	p := statement.NewParser()
	_, err := p.Parse(strings.NewReader(""))
	assert.Error(t, err)
	assert.ErrorIs(t, err, statement.ErrUnknownFormat)
}

func TestParser_SpreadsheetUpload(t *testing.T) {
	xlsx := append([]byte("PK\x03\x04"), bytes.Repeat([]byte{0x00, 0x14}, 32)...)

	p := statement.NewParser()
	_, err := p.Parse(bytes.NewReader(xlsx))
	assert.ErrorIs(t, err, encoding.ErrNotText)
	assert.NotErrorIs(t, err, statement.ErrUnknownFormat)
}

func TestParser_HeaderOnly(t *testing.T) {
	csv := `Data mov.;Data-valor;Descrição;Montante`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestParser_MissingDescription(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;;-10,00
`

	p := statement.NewParser()
	_, err := p.Parse(strings.NewReader(csv))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestParser_LargeAmounts(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;BIG TRANSFER;-1.234.567,89
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, int64(123456789), lines[0].Amount)
}

func TestParser_SkipsFooterRows(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;TEST;-10,00
Totais;;;;
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestParser_USChecking(t *testing.T) {
	csv := `Account,Checking ...4821
Date,Description,Amount,Running Bal.
03/14/2025,"ACME PHOTO STUDIO, LLC",-450.00,"12,004.10"
03/15/2025,COMMISSION DEPOSIT,"15,500.00","27,504.10"
03/16/2025,SHELL OIL 5521,(47.91),"27,456.19"
Totals,,,
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, date(2025, 3, 14), lines[0].Date)
	assert.Equal(t, "ACME PHOTO STUDIO, LLC", lines[0].Description)
	assert.Equal(t, int64(45000), lines[0].Amount)
	assert.True(t, lines[0].Debit)

	assert.Equal(t, int64(1550000), lines[1].Amount)
	assert.False(t, lines[1].Debit)

	assert.Equal(t, int64(4791), lines[2].Amount)
	assert.True(t, lines[2].Debit)
}

func TestParser_USCard(t *testing.T) {
	csv := `Transaction Date,Posted Date,Description,Category,Debit,Credit
04/02/2025,04/03/2025,HOME DEPOT #112,Home,$89.12,
04/05/2025,04/06/2025,PAYMENT THANK YOU,Payment,,$500.00
`

	p := statement.NewParser()
	lines, err := p.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, date(2025, 4, 2), lines[0].Date)
	assert.Equal(t, int64(8912), lines[0].Amount)
	assert.True(t, lines[0].Debit)

	assert.Equal(t, int64(50000), lines[1].Amount)
	assert.False(t, lines[1].Debit)
}

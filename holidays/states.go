package holidays

// State is one Brazilian federative unit, as offered by the municipal
// holiday lookup.
type State struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// BrazilianStates lists the 26 states plus the Distrito Federal,
// alphabetical by code.
var BrazilianStates = []State{
	{Code: "AC", Name: "Acre"},
	{Code: "AL", Name: "Alagoas"},
	{Code: "AM", Name: "Amazonas"},
	{Code: "AP", Name: "Amapá"},
	{Code: "BA", Name: "Bahia"},
	{Code: "CE", Name: "Ceará"},
	{Code: "DF", Name: "Distrito Federal"},
	{Code: "ES", Name: "Espírito Santo"},
	{Code: "GO", Name: "Goiás"},
	{Code: "MA", Name: "Maranhão"},
	{Code: "MG", Name: "Minas Gerais"},
	{Code: "MS", Name: "Mato Grosso do Sul"},
	{Code: "MT", Name: "Mato Grosso"},
	{Code: "PA", Name: "Pará"},
	{Code: "PB", Name: "Paraíba"},
	{Code: "PE", Name: "Pernambuco"},
	{Code: "PI", Name: "Piauí"},
	{Code: "PR", Name: "Paraná"},
	{Code: "RJ", Name: "Rio de Janeiro"},
	{Code: "RN", Name: "Rio Grande do Norte"},
	{Code: "RO", Name: "Rondônia"},
	{Code: "RR", Name: "Roraima"},
	{Code: "RS", Name: "Rio Grande do Sul"},
	{Code: "SC", Name: "Santa Catarina"},
	{Code: "SE", Name: "Sergipe"},
	{Code: "SP", Name: "São Paulo"},
	{Code: "TO", Name: "Tocantins"},
}

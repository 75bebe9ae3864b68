package promptgen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const passthroughPlaceholder = "Prompt to be generated by n8n workflow"

type row struct {
	label string
	key   string
}

type category struct {
	heading  string
	business string
	ideal    string
	rows     []row
	required []string
	message  string
}

var categories = map[string]category{
	Automoveis: {
		heading:  "## CARACTERÍSTICAS DA LOJA",
		business: "veículos",
		ideal:    "o veículo ideal",
		rows: []row{
			{"Tipos de Veículos", "tiposVeiculos"},
			{"Marcas Trabalhadas", "marcasTrabalhadas"},
			{"Formas de Pagamento", "formasPagamento"},
			{"Diferenciais", "diferenciais"},
			{"Taxas Adicionais", "taxasAdicionais"},
		},
		required: []string{"tiposVeiculos", "marcasTrabalhadas", "formasPagamento", "diferenciais", "taxasAdicionais"},
		message:  "Campos específicos para automóveis são obrigatórios",
	},
	EnergiaSolar: {
		heading:  "## CARACTERÍSTICAS DA EMPRESA",
		business: "sistemas de energia solar",
		ideal:    "a solução de energia solar ideal",
		rows: []row{
			{"Tipos de Sistemas", "tiposSistemas"},
			{"Marcas de Equipamentos", "marcasEquipamentos"},
			{"Formas de Pagamento", "formasPagamento"},
			{"Diferenciais", "diferenciais"},
			{"Benefícios Econômicos", "beneficiosEconomicos"},
		},
		required: []string{"tiposSistemas", "marcasEquipamentos", "formasPagamento", "diferenciais", "beneficiosEconomicos"},
		message:  "Campos específicos para energia solar são obrigatórios",
	},
	Outros: {
		heading:  "## CARACTERÍSTICAS DA EMPRESA",
		business: "serviços",
		ideal:    "o serviço ideal",
		rows: []row{
			{"Tipo de Serviço/Produto", "tipoServico"},
			{"Público-Alvo", "publico"},
			{"Preços e Serviços", "precosServicos"},
			{"Formas de Pagamento", "formasPagamento"},
			{"Diferenciais", "diferenciais"},
			{"Políticas de Cancelamento", "politicasCancelamento"},
		},
		required: []string{"tipoServico", "publico", "formasPagamento", "diferenciais", "precosServicos", "politicasCancelamento"},
		message:  "Campos específicos para outros serviços são obrigatórios",
	},
}

// Pronouns is the grammatical-gender triple used in the personality section.
type Pronouns struct {
	Subject    string
	Possessive string
	Object     string
}

var pronouns = map[string]Pronouns{
	"feminino":  {Subject: "ela", Possessive: "sua", Object: "a"},
	"masculino": {Subject: "ele", Possessive: "seu", Object: "o"},
	"neutro":    {Subject: "ele/ela", Possessive: "seu/sua", Object: "o/a"},
}

// PronounsFor returns the triple for gender, defaulting to neutro.
func PronounsFor(gender string) Pronouns {
	if p, ok := pronouns[gender]; ok {
		return p
	}
	return pronouns["neutro"]
}

// Generate renders the assistant prompt document for f. It is a pure
// function of its input. The passthrough form-type returns the submitted
// prompt, or a placeholder, without rendering.
func Generate(f Fields) string {
	formType := f.FormType()
	if formType == Passthrough {
		return f.Or("prompt", passthroughPlaceholder)
	}

	c, known := categories[formType]
	if !known {
		c = category{ideal: "o serviço ideal"}
	}

	p := PronounsFor(f.String("generoBot"))
	subject := capitalize(p.Subject)

	nomeAssistente := f.String("nomeAssistente")
	nomeEmpresa := f.String("nomeEmpresa")

	var b strings.Builder

	fmt.Fprintf(&b, "# INSTRUÇÕES PARA O ASSISTENTE VIRTUAL %s DA %s\n\n",
		strings.ToUpper(nomeAssistente), strings.ToUpper(nomeEmpresa))

	b.WriteString("## IDENTIDADE DO ASSISTENTE\n")
	fmt.Fprintf(&b, "- **Nome**: %s\n", nomeAssistente)
	fmt.Fprintf(&b, "- **Função**: Assistente Virtual da %s\n", nomeEmpresa)
	fmt.Fprintf(&b, "- **Tempo de Mercado da Empresa**: %s\n", f.String("tempoMercado"))
	fmt.Fprintf(&b, "- **Localização/Região**: %s\n\n", f.String("localizacao"))

	b.WriteString(characteristics(c, f))
	b.WriteString("\n\n")

	b.WriteString("## PERSONALIDADE DO ASSISTENTE\n")
	fmt.Fprintf(&b,
		"%s deve se comportar de maneira profissional e atenciosa, sempre mantendo um tom cordial. "+
			"%s representa a %s e deve transmitir confiança e conhecimento sobre %s. "+
			"%s deve ser prestativ%s e focad%s em ajudar os clientes a encontrar %s para suas necessidades.\n\n",
		nomeAssistente,
		subject, nomeEmpresa, c.business,
		subject, p.Object, p.Object, c.ideal,
	)

	section(&b, "## REGRAS CRÍTICAS", f.String("regrasCriticas"))
	section(&b, "## PROIBIÇÕES ABSOLUTAS", f.String("proibicoesAbsolutas"))
	section(&b, "## EXEMPLOS DE RESPOSTAS", f.String("exemplosConversas"))

	b.WriteString("## INFORMAÇÕES DE CONTATO\n")
	fmt.Fprintf(&b, "- **Email**: %s\n", f.Or("emailContato", "Não fornecido"))
	fmt.Fprintf(&b, "- **Site**: %s\n\n", f.Or("siteEmpresa", "Não fornecido"))

	section(&b, "## OBSERVAÇÕES ADICIONAIS", f.Or("observacoesAdicionais", "Nenhuma observação adicional."))

	b.WriteString("Este prompt foi gerado automaticamente pela Central de Formulários da Carbone Company.")

	return b.String()
}

func characteristics(c category, f Fields) string {
	if c.heading == "" {
		return ""
	}

	lines := make([]string, 0, len(c.rows)+1)
	lines = append(lines, c.heading)
	for _, r := range c.rows {
		lines = append(lines, fmt.Sprintf("- **%s**: %s", r.label, f.String(r.key)))
	}
	return strings.Join(lines, "\n")
}

func section(b *strings.Builder, heading, body string) {
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n\n")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

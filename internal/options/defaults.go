package options

// Option list names.
const (
	ListEmails          = "emails"
	ListClients         = "clients"
	ListCreativeTypes   = "creative_types"
	ListDifferentials   = "differentials"
	ListTriggers        = "triggers"
	ListIntentions      = "intentions"
	ListTones           = "tones"
	ListAwarenessLevels = "awareness_levels"
)

// listOrder is the display order of the option lists.
var listOrder = []string{
	ListEmails,
	ListClients,
	ListCreativeTypes,
	ListDifferentials,
	ListTriggers,
	ListIntentions,
	ListTones,
	ListAwarenessLevels,
}

var defaults = map[string][]string{
	ListEmails: {
		"design@example.com",
		"copy@example.com",
		"traffic@example.com",
		"video@example.com",
	},
	ListClients: {
		"TESTE",
		"FREI CANECA",
		"SUPER CABO",
		"PASTA NOBRE",
		"BOM PASTOR",
		"TYAR",
		"MERHY",
		"JNET",
		"YEGRIN",
		"SOLUÇÃO COSMÉTICOS",
		"MUD REVESTIMENTOS",
		"KZ TECNOLOGIA",
		"BLUECHIP",
		"GALPÃO DOS ESTOFADOS",
		"ARTERIA",
		"PER POCHI",
		"PARAÍBA AREIA E BRITA",
		"EVAMAX",
		"GROWDECK",
		"CORTIARTE",
		"DIDATICA NET",
		"BOMBONATO",
		"MIRARE",
		"ARENA ARTERIA",
		"NOVOS VELHOS TEMPOS",
		"MERHY HOME",
		"RENATO (FORMAÇÃO DE VENDEDORES)",
		"MULTIDIESEL",
		"LOCADIESEL",
		"MULTISERVICE",
		"Pizzaria Lima's",
		"Faneca",
		"La Vie Jalecos",
		"CEO Sofware",
		"Hidrolimpa",
	},
	ListCreativeTypes: {
		"Estático",
		"Carrossel",
		"Edição de vídeo",
		"Criação de vídeo",
		"Animação de vídeo",
		"PMAX",
	},
	ListDifferentials: {
		"Qualidade",
		"Preço competitivo",
		"Exclusividade",
		"Facilidade de uso",
		"Sustentabilidade",
		"Atendimento ao cliente/suporte",
		"Inovação tecnológica",
		"Garantia e confiabilidade",
		"Condição de pagamento",
		"Rapidez e agilidade da entrega",
		"Personalização/feito para você",
		"Credibilidade",
		"Resultado comprovado",
	},
	ListTriggers: {
		"Escassez",
		"Urgência",
		"Prova Social",
		"Autoridade",
		"Antecipação",
		"Reciprocidade",
		"Transformação",
		"Comunidade",
		"Curiosidade",
		"Dor e Solução",
		"Benefício",
		"Novidade",
		"Comparação",
	},
	ListIntentions: {
		"Aumento de vendas",
		"Captação de Leads",
		"Reforço de marca",
	},
	ListTones: {
		"Profissional: Formal, objetivo, técnico.",
		"Conversacional: Informal, amigável, próximo.",
		"Inspirador: Motivador, aspiracional, otimista.",
		"Divertido: Humorístico, leve, irreverente.",
		"Educacional: Informativo, didático, confiável.",
		"Urgente: Direto, objetivo, chamando para ação imediata.",
		"Empático: Sensível, acolhedor, solidário.",
		"Exclusivo: Sofisticado, premium, seletivo.",
		"Rebelde: Desafiador, ousado, provocador.",
		"Neutro: Equilibrado, claro, acessível.",
	},
	ListAwarenessLevels: {
		"Totalmente consciente.",
		"Consciente da solução.",
		"Consciente do problema.",
		"Não consciente.",
	},
}

// Defaults returns a copy of the seed items for list, or nil for an unknown
// list name.
func Defaults(list string) []string {
	d, ok := defaults[list]
	if !ok {
		return nil
	}
	out := make([]string, len(d))
	copy(out, d)
	return out
}

package models

// Filter columns. These are also wizard questions of the environment section.
const (
	KeySetor      QuestionKey = "setor_trabalho"
	KeyAlojamento QuestionKey = "localizacao_alojamento"
	KeyRancho     QuestionKey = "localizacao_rancho"
	KeyEscala     QuestionKey = "tipo_escala"
)

// Free-text fields of the comments section.
const (
	KeyComentarioAmbiente       QuestionKey = "comentario_ambiente"
	KeyComentarioRelacionamento QuestionKey = "comentario_relacionamento"
	KeyComentarioMotivacao      QuestionKey = "comentario_motivacao"
	KeySugestoesGerais          QuestionKey = "sugestoes_gerais"
)

// CommentFields are the free-text columns read by the comments panel.
var CommentFields = []QuestionKey{
	KeyComentarioAmbiente,
	KeyComentarioRelacionamento,
	KeyComentarioMotivacao,
	KeySugestoesGerais,
}

// AreaFields are the per-area satisfaction questions summarised by the report.
var AreaFields = []QuestionKey{
	"satisfacao_ambiente",
	"satisfacao_alojamento",
	"satisfacao_rancho",
	"satisfacao_relacionamento",
	"satisfacao_lideranca",
	"satisfacao_desenvolvimento",
	"satisfacao_geral",
}

// legacyKeys maps the older field spellings still sent by cached wizard
// builds to the canonical columns.
var legacyKeys = map[string]QuestionKey{
	"setor_localizacao":      KeySetor,
	"alojamento_localizacao": KeyAlojamento,
	"rancho_localizacao":     KeyRancho,
	"escala_tipo":            KeyEscala,
}

var (
	setorOptions      = []string{"PAPEM-01", "PAPEM-02", "PAPEM-10", "PAPEM-20", "PAPEM-30", "PAPEM-40", "PAPEM-50"}
	alojamentoOptions = []string{"Alojamento A", "Alojamento B", "Alojamento C", "Não utilizo"}
	ranchoOptions     = []string{"Rancho Central", "Rancho Anexo", "Não utilizo"}
	escalaOptions     = []string{"Expediente", "Escala 24x72", "Escala 12x36", "Serviço de Estado"}
)

func agree(key, label string) Question {
	return Question{Key: QuestionKey(key), Kind: KindLikert, Scale: ScaleAgreement, Label: label}
}

func satisfied(key, label string) Question {
	return Question{Key: QuestionKey(key), Kind: KindLikert, Scale: ScaleSatisfaction, Label: label}
}

func choice(key, label string, options ...string) Question {
	return Question{Key: QuestionKey(key), Kind: KindCategorical, Label: label, Options: options}
}

func text(key, label string) Question {
	return Question{Key: QuestionKey(key), Kind: KindText, Label: label}
}

var taxonomy = map[Section][]Question{
	SectionEnvironment: {
		choice(string(KeySetor), "Setor de trabalho", setorOptions...),
		choice(string(KeyAlojamento), "Alojamento utilizado", alojamentoOptions...),
		choice(string(KeyRancho), "Rancho utilizado", ranchoOptions...),
		choice(string(KeyEscala), "Regime de trabalho", escalaOptions...),
		choice("tempo_servico", "Tempo de serviço na OM", "Menos de 1 ano", "1 a 5 anos", "6 a 10 anos", "Mais de 10 anos"),
		choice("vinculo", "Vínculo", "Oficial", "Praça", "Servidor Civil"),
		agree("materiais_fornecidos", "Os materiais fornecidos são suficientes para o trabalho"),
		agree("equipamentos_adequados", "Os equipamentos de informática atendem às necessidades"),
		agree("limpeza_setor", "O setor é mantido limpo e organizado"),
		agree("iluminacao_setor", "A iluminação do setor é adequada"),
		agree("temperatura_setor", "A temperatura do setor é confortável"),
		agree("ruido_setor", "O nível de ruído permite a concentração"),
		agree("mobiliario_ergonomico", "O mobiliário é ergonômico"),
		agree("espaco_fisico", "O espaço físico é suficiente"),
		agree("instalacoes_sanitarias", "As instalações sanitárias são adequadas"),
		agree("conforto_alojamento", "O alojamento oferece conforto para o descanso"),
		agree("limpeza_alojamento", "O alojamento é mantido limpo"),
		agree("seguranca_alojamento", "Sinto segurança ao guardar meus pertences no alojamento"),
		agree("qualidade_refeicoes", "As refeições do rancho têm boa qualidade"),
		agree("variedade_cardapio", "O cardápio é variado"),
		agree("higiene_rancho", "O rancho apresenta boas condições de higiene"),
		agree("atendimento_rancho", "O atendimento no rancho é cordial"),
		agree("horario_refeicoes", "Os horários das refeições são adequados"),
		agree("seguranca_trabalho", "As condições de segurança do trabalho são adequadas"),
	},
	SectionRelationships: {
		agree("relacionamento_chefia", "Tenho bom relacionamento com a chefia imediata"),
		agree("relacionamento_colegas", "Tenho bom relacionamento com os colegas"),
		agree("relacionamento_subordinados", "Tenho bom relacionamento com os subordinados"),
		agree("comunicacao_chefia", "A chefia comunica com clareza as decisões"),
		agree("comunicacao_setores", "A comunicação entre os setores funciona bem"),
		agree("respeito_mutuo", "Existe respeito mútuo no ambiente de trabalho"),
		agree("trabalho_equipe", "O setor trabalha em equipe"),
		agree("reconhecimento_chefia", "A chefia reconhece o bom desempenho"),
		agree("feedback_desempenho", "Recebo retorno sobre o meu desempenho"),
		agree("resolucao_conflitos", "Os conflitos são resolvidos de forma justa"),
		agree("tratamento_igualitario", "Todos recebem tratamento igualitário"),
		agree("abertura_sugestoes", "Há abertura para apresentar sugestões"),
		agree("confianca_lideranca", "Confio nas decisões da liderança"),
		choice("presenciou_assedio", "Presenciou situação de assédio nos últimos 12 meses", "Sim", "Não", "Prefiro não responder"),
	},
	SectionMotivation: {
		agree("motivacao_trabalho", "Sinto-me motivado com o meu trabalho"),
		agree("orgulho_instituicao", "Tenho orgulho de servir nesta OM"),
		agree("reconhecimento_trabalho", "Meu trabalho é reconhecido pela instituição"),
		agree("oportunidades_crescimento", "Tenho oportunidades de crescimento profissional"),
		agree("cursos_capacitacao", "A OM incentiva cursos de capacitação"),
		agree("carga_trabalho", "A carga de trabalho é adequada"),
		agree("equilibrio_vida_trabalho", "Consigo equilibrar vida pessoal e trabalho"),
		agree("perspectiva_carreira", "Vejo perspectiva de carreira"),
		agree("valorizacao_profissional", "Sinto-me valorizado profissionalmente"),
		agree("clareza_atribuicoes", "Minhas atribuições são claras"),
		satisfied("satisfacao_ambiente", "Satisfação com o ambiente de trabalho"),
		satisfied("satisfacao_alojamento", "Satisfação com o alojamento"),
		satisfied("satisfacao_rancho", "Satisfação com o rancho"),
		satisfied("satisfacao_relacionamento", "Satisfação com os relacionamentos"),
		satisfied("satisfacao_lideranca", "Satisfação com a liderança"),
		satisfied("satisfacao_desenvolvimento", "Satisfação com o desenvolvimento profissional"),
		satisfied("satisfacao_geral", "Satisfação geral com a OM"),
		choice("pretende_permanecer", "Pretende permanecer na OM", "Sim", "Não", "Indeciso"),
	},
	SectionComments: {
		text(string(KeyComentarioAmbiente), "Comentários sobre o ambiente"),
		text(string(KeyComentarioRelacionamento), "Comentários sobre os relacionamentos"),
		text(string(KeyComentarioMotivacao), "Comentários sobre motivação"),
		text(string(KeySugestoesGerais), "Sugestões gerais"),
	},
}

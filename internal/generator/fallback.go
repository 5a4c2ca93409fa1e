package generator

import (
	"strings"

	"github.com/kimhsiao/blogai/internal/models"
)

var introTemplates = []string{
	"{topic} é um tema fascinante e relevante nos dias de hoje. Neste artigo, exploraremos os principais aspectos que definem este conceito e sua importância.",
	"Você já parou para pensar sobre {topic}? Descubra como este tema impacta nossa sociedade e o que especialistas têm a dizer.",
	"{topic} continua evoluindo. Conheça as tendências mais recentes, desafios e oportunidades nesta área em constante transformação.",
}

const fallbackBody = "A importância de {topic} cresce a cada dia. Profissionais e entusiastas dedicam-se a compreender melhor este universo complexo.\n\n" +
	"Neste artigo, abordaremos:\n" +
	"• Definição e conceitos fundamentais\n" +
	"• Aplicações práticas\n" +
	"• Desafios atuais\n" +
	"• Perspectivas futuras\n\n" +
	"Esperamos que este conteúdo seja útil para sua jornada de aprendizado sobre {topic}."

func interpolate(template, topic string) string {
	return strings.ReplaceAll(template, "{topic}", topic)
}

// Fallback builds an article locally from fixed Portuguese templates.
// It needs no network and cannot fail.
func Fallback(topic string, choose Chooser) models.GeneratedArticle {
	intro := interpolate(introTemplates[choose(len(introTemplates))], topic)
	return models.GeneratedArticle{
		Title:       Title(topic, choose),
		Description: Truncate(intro, FallbackDescriptionLen),
		Content:     intro + "\n\n" + interpolate(fallbackBody, topic),
		Tags:        Tags(topic),
		Source:      models.SourceFallback,
	}
}

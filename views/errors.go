package views

import (
	"context"

	"github.com/a-h/templ"

	spacetraveling "github.com/eringen/spacetraveling"
)

// NotFound renders the 404 page.
func NotFound(cfg spacetraveling.SiteConfig) templ.Component {
	return errorPage(cfg, "Página não encontrada", "O post que você procura não existe ou foi removido.")
}

// ServerError renders the 5xx page.
func ServerError(cfg spacetraveling.SiteConfig) templ.Component {
	return errorPage(cfg, "Algo deu errado", "Não foi possível carregar esta página. Tente novamente em instantes.")
}

func errorPage(cfg spacetraveling.SiteConfig, title, message string) templ.Component {
	return newComponent(func(ctx context.Context, hw *htmlWriter) {
		meta := spacetraveling.PageMeta{Title: title + " | " + cfg.Name}
		layout(hw, cfg, meta, "", false, func() {
			hw.open("main", "class", "container error")
			hw.element("h1", title)
			hw.element("p", message)
			hw.element("a", "Voltar para o início", "href", "/")
			hw.close("main")
		})
	})
}

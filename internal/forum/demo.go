package forum

import (
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/vote"
	"github.com/Luiz-altf4/Rose-Forum/models"
)

const DemoUserName = "UsuarioDemo"

const day = 24 * time.Hour

// demoPosts are dated relative to now so the feed always looks recent.
func demoPosts(now time.Time) []models.Post {
	return []models.Post{
		{
			ID:       "demo1",
			Title:    "Bem-vindo ao Rose Forum!",
			Content:  "Este é o primeiro post de demonstração no Rose Forum. Uma comunidade estilo Reddit com visual clássico dos anos 2010. Sinta-se à vontade para explorar as funcionalidades!",
			Category: models.DefaultCategory,
			Tags:     []string{"bem-vindo", "demo", "rose"},
			Date:     now.Add(-1 * day),
			Views:    42,
			Likes:    5,
			Tally:    vote.Tally{Upvotes: 12},
			Author:   "Admin",
		},
		{
			ID:       "demo2",
			Title:    "Tecnologia: O futuro da programação",
			Content:  "A programação está evoluindo rapidamente com novas linguagens e frameworks. O que vocês acham das novas tendências como Rust, Go e WebAssembly? Compartilhem suas experiências!",
			Category: "tecnologia",
			Tags:     []string{"programacao", "tecnologia", "futuro"},
			Date:     now.Add(-2 * day),
			Views:    128,
			Likes:    15,
			Tally:    vote.Tally{Upvotes: 28, Downvotes: 2},
			Author:   "TechUser",
		},
		{
			ID:       "demo3",
			Title:    "Design minimalista: Menos é mais?",
			Content:  "O design minimalista tem dominado a web nos últimos anos. Mas será que menos é sempre mais? Discutam os prós e contras dessa abordagem estética.",
			Category: "design",
			Tags:     []string{"design", "minimalismo", "ux"},
			Date:     now.Add(-3 * day),
			Views:    89,
			Likes:    8,
			Tally:    vote.Tally{Upvotes: 18, Downvotes: 3},
			Author:   "DesignerPro",
		},
		{
			ID:       "demo4",
			Title:    "Melhores práticas em JavaScript 2024",
			Content:  "Com a evolução do JavaScript, muitas boas práticas surgiram. Async/await, destructuring, modules ES6. Quais técnicas vocês mais usam no dia a dia?",
			Category: "programacao",
			Tags:     []string{"javascript", "programacao", "web"},
			Date:     now.Add(-4 * day),
			Views:    156,
			Likes:    22,
			Tally:    vote.Tally{Upvotes: 35, Downvotes: 1},
			Author:   "JSDev",
		},
		{
			ID:       "demo5",
			Title:    "Livros que todo desenvolvedor deveria ler",
			Content:  `Além dos livros técnicos, quais livros de negócios, psicologia ou filosofia influenciaram sua carreira? Eu recomendo "The Pragmatic Programmer" e "Clean Code".`,
			Category: "livros",
			Tags:     []string{"livros", "desenvolvimento", "carreira"},
			Date:     now.Add(-5 * day),
			Views:    203,
			Likes:    31,
			Tally:    vote.Tally{Upvotes: 45, Downvotes: 4},
			Author:   "BookWorm",
		},
	}
}

package generate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

// scaffold assembles the Next.js file set for one generation request.
type scaffold struct {
	req  pipeline.GenerationRequest
	spec *spec.StructuredSpec
	ext  string // "tsx" or "jsx"
}

func newScaffold(req pipeline.GenerationRequest) *scaffold {
	ext := "tsx"
	if !req.Options.TypeScript {
		ext = "jsx"
	}
	return &scaffold{req: req, spec: req.Spec, ext: ext}
}

func (s *scaffold) entryPoint() string {
	return "src/app/page." + s.ext
}

func (s *scaffold) dependencies() map[string]string {
	deps := map[string]string{
		"next":      "^14.2.0",
		"react":     "^18.3.0",
		"react-dom": "^18.3.0",
		"zustand":   "^4.5.0",
	}
	return deps
}

func (s *scaffold) devDependencies() map[string]string {
	deps := map[string]string{}
	if s.req.Options.Styling == "tailwind" {
		deps["tailwindcss"] = "^3.4.0"
		deps["postcss"] = "^8.4.0"
		deps["autoprefixer"] = "^10.4.0"
	}
	if s.req.Options.TypeScript {
		deps["typescript"] = "^5.4.0"
		deps["@types/react"] = "^18.3.0"
		deps["@types/node"] = "^20.12.0"
	}
	if s.req.Options.IncludeTests {
		deps["vitest"] = "^1.5.0"
		deps["@testing-library/react"] = "^15.0.0"
	}
	return deps
}

func (s *scaffold) files() []project.GeneratedFile {
	var files []project.GeneratedFile
	add := func(path, content, fileType string) {
		files = append(files, project.GeneratedFile{
			Path:     path,
			Content:  content,
			FileType: fileType,
			Lines:    strings.Count(content, "\n"),
		})
	}

	add("package.json", s.packageJSON(), "config")
	add("next.config.mjs", nextConfig, "config")
	add(".gitignore", gitignore, "config")
	if s.req.Options.TypeScript {
		add("tsconfig.json", tsConfig, "config")
	}
	if s.req.Options.Styling == "tailwind" {
		add("tailwind.config.js", s.tailwindConfig(), "config")
		add("postcss.config.js", postcssConfig, "config")
	}
	add("src/app/globals.css", s.globalsCSS(), "source")
	add("src/app/layout."+s.ext, s.layout(), "source")
	add("src/app/page."+s.ext, s.homePage(), "source")

	if s.req.Options.TypeScript && len(s.spec.DataModels) > 0 {
		add("src/lib/types.ts", s.typesFile(), "source")
	}
	if len(s.spec.Features) > 0 {
		add("src/lib/store."+strings.TrimSuffix(s.ext, "x"), s.storeFile(), "source")
	}

	for _, c := range s.spec.UIComponents {
		path, content := s.componentFile(c)
		add(path, content, "source")
	}
	for _, path := range s.apiRoutePaths() {
		add(path.file, s.apiRoute(path), "source")
	}
	if s.req.Options.IncludeTests {
		add("src/app/page.test."+s.ext, s.smokeTest(), "test")
	}
	add("README.md", s.readme(), "docs")

	return files
}

func (s *scaffold) packageJSON() string {
	var b strings.Builder
	b.WriteString("{\n")
	fmt.Fprintf(&b, "  %q: %q,\n", "name", sanitizeName(s.req.ProjectName))
	b.WriteString("  \"version\": \"0.1.0\",\n")
	b.WriteString("  \"private\": true,\n")
	b.WriteString("  \"scripts\": {\n")
	b.WriteString("    \"dev\": \"next dev\",\n")
	b.WriteString("    \"build\": \"next build\",\n")
	b.WriteString("    \"start\": \"next start\"")
	if s.req.Options.IncludeTests {
		b.WriteString(",\n    \"test\": \"vitest run\"")
	}
	b.WriteString("\n  },\n")
	writeDeps := func(key string, deps map[string]string, last bool) {
		fmt.Fprintf(&b, "  %q: {\n", key)
		names := make([]string, 0, len(deps))
		for name := range deps {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			comma := ","
			if i == len(names)-1 {
				comma = ""
			}
			fmt.Fprintf(&b, "    %q: %q%s\n", name, deps[name], comma)
		}
		if last {
			b.WriteString("  }\n")
		} else {
			b.WriteString("  },\n")
		}
	}
	dev := s.devDependencies()
	writeDeps("dependencies", s.dependencies(), len(dev) == 0)
	if len(dev) > 0 {
		writeDeps("devDependencies", dev, true)
	}
	b.WriteString("}\n")
	return b.String()
}

const nextConfig = `/** @type {import('next').NextConfig} */
const nextConfig = {
  reactStrictMode: true,
};

export default nextConfig;
`

const gitignore = `node_modules/
.next/
out/
.env*.local
*.tsbuildinfo
`

const tsConfig = `{
  "compilerOptions": {
    "target": "ES2020",
    "lib": ["dom", "dom.iterable", "esnext"],
    "allowJs": true,
    "skipLibCheck": true,
    "strict": true,
    "noEmit": true,
    "esModuleInterop": true,
    "module": "esnext",
    "moduleResolution": "bundler",
    "resolveJsonModule": true,
    "isolatedModules": true,
    "jsx": "preserve",
    "incremental": true,
    "plugins": [{ "name": "next" }],
    "paths": { "@/*": ["./src/*"] }
  },
  "include": ["next-env.d.ts", "**/*.ts", "**/*.tsx", ".next/types/**/*.ts"],
  "exclude": ["node_modules"]
}
`

const postcssConfig = `module.exports = {
  plugins: {
    tailwindcss: {},
    autoprefixer: {},
  },
};
`

func (s *scaffold) tailwindConfig() string {
	return `/** @type {import('tailwindcss').Config} */
module.exports = {
  content: ["./src/**/*.{js,ts,jsx,tsx}"],
  theme: {
    extend: {},
  },
  plugins: [],
};
`
}

func (s *scaffold) globalsCSS() string {
	if s.req.Options.Styling == "tailwind" {
		return "@tailwind base;\n@tailwind components;\n@tailwind utilities;\n"
	}
	return "body {\n  margin: 0;\n  font-family: system-ui, sans-serif;\n}\n"
}

func (s *scaffold) layout() string {
	var b strings.Builder
	b.WriteString("import \"./globals.css\";\n\n")
	fmt.Fprintf(&b, "export const metadata = {\n  title: %q,\n  description: %q,\n};\n\n",
		s.spec.ProjectName, s.spec.Description)
	if s.req.Options.TypeScript {
		b.WriteString("export default function RootLayout({ children }: { children: React.ReactNode }) {\n")
	} else {
		b.WriteString("export default function RootLayout({ children }) {\n")
	}
	b.WriteString("  return (\n    <html lang=\"en\">\n      <body>{children}</body>\n    </html>\n  );\n}\n")
	return b.String()
}

func (s *scaffold) homePage() string {
	var b strings.Builder
	b.WriteString("export default function Home() {\n  return (\n    <main className=\"p-8\">\n")
	fmt.Fprintf(&b, "      <h1 className=\"text-2xl font-bold\">%s</h1>\n", htmlEscape(s.spec.ProjectName))
	fmt.Fprintf(&b, "      <p className=\"mt-2\">%s</p>\n", htmlEscape(s.spec.Description))
	if len(s.spec.Features) > 0 {
		b.WriteString("      <ul className=\"mt-4 list-disc pl-6\">\n")
		for _, f := range s.spec.Features {
			fmt.Fprintf(&b, "        <li>%s</li>\n", htmlEscape(f.Name))
		}
		b.WriteString("      </ul>\n")
	}
	b.WriteString("    </main>\n  );\n}\n")
	return b.String()
}

func (s *scaffold) typesFile() string {
	var b strings.Builder
	for i, model := range s.spec.DataModels {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "export interface %s {\n", pascalCase(model.Name))
		b.WriteString("  id: string;\n")
		for _, f := range model.Fields {
			optional := ""
			if !f.Required {
				optional = "?"
			}
			fmt.Fprintf(&b, "  %s%s: %s;\n", camelCase(f.Name), optional, tsType(f.Type))
		}
		b.WriteString("}\n")
	}
	return b.String()
}

func (s *scaffold) storeFile() string {
	var b strings.Builder
	b.WriteString("import { create } from \"zustand\";\n\n")
	b.WriteString("export const useAppStore = create((set) => ({\n")
	b.WriteString("  loading: false,\n")
	b.WriteString("  setLoading: (loading) => set({ loading }),\n")
	b.WriteString("}));\n")
	return b.String()
}

func (s *scaffold) componentFile(c spec.UIComponent) (string, string) {
	name := pascalCase(c.Name)
	var path string
	if c.Type == spec.ComponentPage {
		route := strings.TrimSuffix(c.Route, "/")
		if route == "" {
			route = "/" + sanitizeName(c.Name)
		}
		path = "src/app" + route + "/page." + s.ext
	} else {
		path = "src/components/" + name + "." + s.ext
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// %s\n", c.Description)
	fmt.Fprintf(&b, "export default function %s() {\n", name)
	b.WriteString("  return (\n    <section className=\"p-4\">\n")
	fmt.Fprintf(&b, "      <h2 className=\"text-xl font-semibold\">%s</h2>\n", htmlEscape(c.Name))
	b.WriteString("    </section>\n  );\n}\n")
	return path, b.String()
}

// apiRoutePath pairs an endpoint group with its route file.
type apiRoutePath struct {
	file    string
	methods []spec.APIEndpoint
}

// apiRoutePaths groups endpoints by path since Next.js route handlers hold
// all methods of one path in a single file.
func (s *scaffold) apiRoutePaths() []apiRoutePath {
	ext := "ts"
	if !s.req.Options.TypeScript {
		ext = "js"
	}
	grouped := map[string][]spec.APIEndpoint{}
	var order []string
	for _, ep := range s.spec.APIEndpoints {
		file := "src/app/api" + routeSegment(ep.Path) + "/route." + ext
		if _, ok := grouped[file]; !ok {
			order = append(order, file)
		}
		grouped[file] = append(grouped[file], ep)
	}
	paths := make([]apiRoutePath, 0, len(order))
	for _, file := range order {
		paths = append(paths, apiRoutePath{file: file, methods: grouped[file]})
	}
	return paths
}

// routeSegment converts "/tasks/{id}" to "/tasks/[id]" for the app router.
func routeSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	path = strings.ReplaceAll(path, "{", "[")
	return strings.ReplaceAll(path, "}", "]")
}

func (s *scaffold) apiRoute(route apiRoutePath) string {
	var b strings.Builder
	b.WriteString("import { NextResponse } from \"next/server\";\n")
	for _, ep := range route.methods {
		fmt.Fprintf(&b, "\n// %s\n", ep.Description)
		fmt.Fprintf(&b, "export async function %s() {\n", strings.ToUpper(ep.Method))
		fmt.Fprintf(&b, "  return NextResponse.json({ message: %q }, { status: 501 });\n", "not implemented")
		b.WriteString("}\n")
	}
	return b.String()
}

func (s *scaffold) smokeTest() string {
	var b strings.Builder
	b.WriteString("import { render, screen } from \"@testing-library/react\";\n")
	b.WriteString("import { expect, test } from \"vitest\";\n")
	b.WriteString("import Home from \"./page\";\n\n")
	fmt.Fprintf(&b, "test(\"renders the project title\", () => {\n  render(<Home />);\n  expect(screen.getByText(%q)).toBeDefined();\n});\n",
		s.spec.ProjectName)
	return b.String()
}

func (s *scaffold) readme() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", s.spec.ProjectName, s.spec.Description)
	b.WriteString("## Getting Started\n\n```bash\nnpm install\nnpm run dev\n```\n")
	if len(s.spec.Features) > 0 {
		b.WriteString("\n## Features\n\n")
		for _, f := range s.spec.Features {
			fmt.Fprintf(&b, "- **%s**: %s\n", f.Name, f.Description)
		}
	}
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func tsType(fieldType string) string {
	switch fieldType {
	case "string", "date", "datetime", "uuid":
		return "string"
	case "number":
		return "number"
	case "boolean":
		return "boolean"
	case "array":
		return "unknown[]"
	case "json":
		return "Record<string, unknown>"
	default:
		return "string"
	}
}

func pascalCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	if b.Len() == 0 {
		return "Component"
	}
	return b.String()
}

func camelCase(name string) string {
	p := pascalCase(name)
	return strings.ToLower(p[:1]) + p[1:]
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/RowanDark/esdes/internal/cipher"
	"github.com/RowanDark/esdes/internal/codec"
	"github.com/RowanDark/esdes/internal/config"
)

func runRecipe(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "recipe subcommand required")
		return 2
	}
	switch args[0] {
	case "list":
		return runRecipeList(args[1:])
	case "show", "export":
		return runRecipeExport(args[0], args[1:])
	case "run":
		return runRecipeRun(args[1:])
	case "import":
		return runRecipeImport(args[1:])
	case "delete":
		return runRecipeDelete(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown recipe subcommand: %s\n", args[0])
		return 2
	}
}

// openRecipes loads the recipe store named by the configuration. The returned
// session must be closed.
func openRecipes(fs *flag.FlagSet, args []string) (*cipher.RecipeManager, *session, int) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return nil, nil, 1
	}
	fs.SetOutput(os.Stderr)
	dir := fs.String("dir", cfg.RecipesDir, "recipe directory (default ~/.esdes/recipes)")
	auditLog := fs.String("audit-log", cfg.AuditLog, "append JSON audit events to this file")
	if err := fs.Parse(args); err != nil {
		return nil, nil, 2
	}
	cfg.RecipesDir = *dir
	path, err := cfg.RecipesPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, 1
	}

	ctx := context.Background()
	sess, err := openSession(ctx, cfg, *auditLog, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, 1
	}

	var opts []cipher.RecipeOption
	if sess.audit != nil {
		opts = append(opts, cipher.WithRecipeAudit(sess.audit))
	}
	rm := cipher.NewRecipeManager(path, opts...)
	if err := rm.LoadRecipes(); err != nil {
		sess.close(ctx)
		fmt.Fprintf(os.Stderr, "load recipes: %v\n", err)
		return nil, nil, 1
	}
	return rm, sess, 0
}

func runRecipeList(args []string) int {
	fs := flag.NewFlagSet("recipe list", flag.ContinueOnError)
	search := fs.String("search", "", "only list recipes matching this text")
	rm, sess, code := openRecipes(fs, args)
	if rm == nil {
		return code
	}
	defer sess.close(context.Background())

	recipes := rm.ListRecipes()
	if *search != "" {
		recipes = rm.SearchRecipes(*search)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tTAGS\tDESCRIPTION")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.ID, strings.Join(r.Tags, ","), r.Description)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "write recipes: %v\n", err)
		return 1
	}
	return 0
}

func runRecipeExport(name string, args []string) int {
	fs := flag.NewFlagSet("recipe "+name, flag.ContinueOnError)
	out := fs.String("out", "", "write to this file instead of stdout")
	rm, sess, code := openRecipes(fs, args)
	if rm == nil {
		return code
	}
	defer sess.close(context.Background())
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "recipe %s requires exactly one recipe name\n", name)
		return 2
	}

	data, err := rm.ExportYAML(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *out == "" {
		_, _ = os.Stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write recipe: %v\n", err)
		return 1
	}
	return 0
}

func runRecipeImport(args []string) int {
	fs := flag.NewFlagSet("recipe import", flag.ContinueOnError)
	rm, sess, code := openRecipes(fs, args)
	if rm == nil {
		return code
	}
	defer sess.close(context.Background())
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "recipe import requires exactly one file")
		return 2
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read recipe: %v\n", err)
		return 1
	}
	recipe, err := rm.ImportYAML(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import recipe: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "imported recipe %s (%s)\n", recipe.Name, recipe.ID)
	return 0
}

func runRecipeDelete(args []string) int {
	fs := flag.NewFlagSet("recipe delete", flag.ContinueOnError)
	rm, sess, code := openRecipes(fs, args)
	if rm == nil {
		return code
	}
	defer sess.close(context.Background())
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "recipe delete requires exactly one recipe name")
		return 2
	}

	if err := rm.DeleteRecipe(fs.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "delete recipe: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "deleted recipe %s\n", fs.Arg(0))
	return 0
}

func runRecipeRun(args []string) int {
	fs := flag.NewFlagSet("recipe run", flag.ContinueOnError)
	reverse := fs.Bool("reverse", false, "run the inverse pipeline")
	params := paramFlag{}
	fs.Var(params, "param", "operation parameter key=value (repeatable)")
	rm, sess, code := openRecipes(fs, args)
	if rm == nil {
		return code
	}
	defer sess.close(context.Background())
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "recipe run requires a recipe name")
		return 2
	}

	recipe, ok := rm.GetRecipe(fs.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "recipe not found: %s\n", fs.Arg(0))
		return 1
	}
	pipeline := recipe.Pipeline.Bind(params)
	if *reverse {
		reversed, err := pipeline.Reverse()
		if err != nil {
			fmt.Fprintf(os.Stderr, "reverse recipe: %v\n", err)
			return 1
		}
		pipeline = reversed
	}

	text, err := newInput().text(fs.Args()[1:], " ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	data, err := codec.EncodeText(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()
	out, err := pipeline.Execute(ctx, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run recipe: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stdout, codec.DecodeText(out))
	return 0
}

// print_brackets shows how a taxable amount moves through a jurisdiction's
// bracket schedule. Usage: print_brackets [-rules file] CODE AMOUNT
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/withholding/internal/calculation"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/shopspring/decimal"
)

func main() {
	rulesPath := flag.String("rules", "", "rule table file (default: embedded)")
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: print_brackets [-rules file] CODE AMOUNT")
		os.Exit(2)
	}

	rules, err := config.NewRulesLoader().Load(*rulesPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	code := strings.ToUpper(flag.Arg(0))
	amount, err := decimal.NewFromString(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid amount %q\n", flag.Arg(1))
		os.Exit(1)
	}

	brackets := rules.Federal.Brackets
	name := "Federal"
	if code != "FED" {
		rule, ok := rules.Jurisdiction(code)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown jurisdiction %s\n", code)
			os.Exit(1)
		}
		brackets, name = rule.Brackets, rule.Name
	}

	fmt.Printf("%s (%s) on %s, rules %s\n", name, code, amount.StringFixed(2), rules.Metadata.Version)
	if len(brackets) == 0 {
		fmt.Println("no income tax")
		return
	}
	for _, b := range brackets {
		upper := "and up"
		if !b.OpenEnded() {
			upper = b.Max.StringFixed(2)
		}
		marker := ""
		if b.Contains(amount) {
			marker = "  <-"
		}
		fmt.Printf("  %12s %12s  %7s  base %10s%s\n",
			b.Min.StringFixed(2), upper, b.Rate.Mul(decimal.NewFromInt(100)).StringFixed(2)+"%",
			b.CumulativeBase.StringFixed(2), marker)
	}
	fmt.Printf("Tax: %s\n", calculation.EvaluateProgressive(amount, brackets).StringFixed(2))
}

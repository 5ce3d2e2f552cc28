package recognition

// builtinMappings returns the compiled-in candidate table for common
// mathematical symbols. It is the last resort when no external mapping
// source loads: keyed by symbol id only, so class indices cannot be
// resolved, but candidate lookups stay non-empty.
//
// Priorities follow the mathematical-priority principle: commands with a
// specific mathematical meaning outrank visually similar generic ones
// (\implies over \Rightarrow over \rightarrow).
func builtinMappings() map[int][]Candidate {
	return map[int][]Candidate{
		1: {
			{Command: `\implies`, Priority: 1.0, Context: "logical implication"},
			{Command: `\Rightarrow`, Priority: 0.6, Context: "general implication"},
			{Command: `\rightarrow`, Priority: 0.3, Context: "generic arrow or mapping"},
		},
		2: {
			{Command: `\iff`, Priority: 1.0, Context: "if and only if"},
			{Command: `\Leftrightarrow`, Priority: 0.6, Context: "general equivalence"},
			{Command: `\leftrightarrow`, Priority: 0.3, Context: "generic bidirectional arrow"},
		},
		3: {
			{Command: `\mapsto`, Priority: 0.9, Context: "element mapping"},
			{Command: `\rightarrow`, Priority: 0.8, Context: "function mapping or limit"},
			{Command: `\to`, Priority: 0.7, Context: "function mapping (shorthand)"},
		},
		4: {
			{Command: `\subseteq`, Priority: 1.0, Context: "subset or equal"},
			{Command: `\subseteqq`, Priority: 0.9, Context: "subset or equal (variant)"},
			{Command: `\subset`, Priority: 0.7, Context: "proper subset"},
		},
		5: {
			{Command: `\in`, Priority: 1.0, Context: "set membership"},
			{Command: `\epsilon`, Priority: 0.2, Context: "Greek letter epsilon"},
		},
		6: {
			{Command: `\cup`, Priority: 1.0, Context: "set union"},
			{Command: `\bigcup`, Priority: 0.9, Context: "big union"},
		},
		7: {
			{Command: `\cap`, Priority: 1.0, Context: "set intersection"},
			{Command: `\bigcap`, Priority: 0.9, Context: "big intersection"},
		},
		8: {
			{Command: `\leq`, Priority: 1.0, Context: "less than or equal"},
			{Command: `\leqslant`, Priority: 0.8, Context: "less than or equal (variant)"},
		},
		9: {
			{Command: `\geq`, Priority: 1.0, Context: "greater than or equal"},
			{Command: `\geqslant`, Priority: 0.8, Context: "greater than or equal (variant)"},
		},
		10: {
			{Command: `\neq`, Priority: 1.0, Context: "not equal"},
			{Command: `\ne`, Priority: 0.9, Context: "not equal (shorthand)"},
		},
		11: {
			{Command: `\approx`, Priority: 1.0, Context: "approximately equal"},
			{Command: `\simeq`, Priority: 0.8, Context: "asymptotically equal"},
			{Command: `\cong`, Priority: 0.7, Context: "congruent"},
		},
		12: {
			{Command: `\forall`, Priority: 1.0, Context: "universal quantifier"},
		},
		13: {
			{Command: `\exists`, Priority: 1.0, Context: "existential quantifier"},
		},
		14: {
			{Command: `\times`, Priority: 1.0, Context: "multiplication or cross product"},
			{Command: `\cdot`, Priority: 0.9, Context: "dot product or scalar multiplication"},
			{Command: `\ast`, Priority: 0.5, Context: "asterisk multiplication"},
		},
		15: {
			{Command: `\div`, Priority: 1.0, Context: "division"},
		},
		16: {
			{Command: `\pm`, Priority: 1.0, Context: "plus or minus"},
			{Command: `\mp`, Priority: 0.9, Context: "minus or plus"},
		},
		17: {
			{Command: `\equiv`, Priority: 1.0, Context: "equivalent or congruent"},
			{Command: `\sim`, Priority: 0.7, Context: "similar or asymptotically equivalent"},
		},
		18: {
			{Command: `\int`, Priority: 1.0, Context: "integral"},
			{Command: `\oint`, Priority: 0.9, Context: "contour integral"},
			{Command: `\iint`, Priority: 0.8, Context: "double integral"},
		},
		19: {
			{Command: `\sum`, Priority: 1.0, Context: "summation"},
			{Command: `\Sigma`, Priority: 0.3, Context: "Greek letter capital sigma"},
		},
		20: {
			{Command: `\prod`, Priority: 1.0, Context: "product"},
			{Command: `\Pi`, Priority: 0.3, Context: "Greek letter capital pi"},
		},
	}
}

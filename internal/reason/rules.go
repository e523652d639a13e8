package reason

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// RuleReasoner is the deterministic fallback implementation of Reasoner. It
// answers from a curated knowledge table of recurrent breast-cancer variants
// and templated summaries, so the engine runs without any LLM configured and
// tests are reproducible.
type RuleReasoner struct{}

// Compile-time verification that RuleReasoner implements Reasoner.
var _ Reasoner = (*RuleReasoner)(nil)

// NewRuleReasoner creates the rule-based reasoner.
func NewRuleReasoner() *RuleReasoner {
	return &RuleReasoner{}
}

// variantKnowledge is one curated entry in the interpretation table.
type variantKnowledge struct {
	significance    string
	mechanism       string
	tier            string
	approvedTherapy string
	prevalence      string
}

// knownVariants is keyed by "GENE VARIANT"; gene-level entries use "GENE *".
var knownVariants = map[string]variantKnowledge{
	"PIK3CA H1047R": {
		significance:    "Pathogenic",
		mechanism:       "Kinase-domain hotspot, constitutive PI3K/AKT pathway activation",
		tier:            "Tier 1",
		approvedTherapy: "Alpelisib + fulvestrant",
		prevalence:      "~15% of HR+/HER2- breast cancer",
	},
	"PIK3CA E545K": {
		significance:    "Pathogenic",
		mechanism:       "Helical-domain hotspot, constitutive PI3K/AKT pathway activation",
		tier:            "Tier 1",
		approvedTherapy: "Alpelisib + fulvestrant",
		prevalence:      "~10% of HR+/HER2- breast cancer",
	},
	"AKT1 E17K": {
		significance:    "Pathogenic",
		mechanism:       "PH-domain activating mutation, membrane-localized AKT signaling",
		tier:            "Tier 2",
		approvedTherapy: "Capivasertib + fulvestrant",
		prevalence:      "~5% of HR+ breast cancer",
	},
	"ESR1 D538G": {
		significance:    "Pathogenic",
		mechanism:       "Ligand-binding domain mutation, estrogen-independent ER activation",
		tier:            "Tier 2",
		approvedTherapy: "Elacestrant",
		prevalence:      "Common after aromatase inhibitor exposure",
	},
	"TP53 R273H": {
		significance: "Pathogenic",
		mechanism:    "DNA-binding domain missense, loss of transcriptional tumor suppression",
		tier:         "Tier 3",
		prevalence:   "~30% across breast cancer subtypes",
	},
	"BRCA1 *": {
		significance:    "Pathogenic",
		mechanism:       "Homologous recombination deficiency",
		tier:            "Tier 1",
		approvedTherapy: "Olaparib",
		prevalence:      "~3% of breast cancer, enriched in triple-negative",
	},
	"BRCA2 *": {
		significance:    "Pathogenic",
		mechanism:       "Homologous recombination deficiency",
		tier:            "Tier 1",
		approvedTherapy: "Olaparib",
		prevalence:      "~3% of breast cancer",
	},
	"ERBB2 *": {
		significance:    "Pathogenic",
		mechanism:       "HER2 receptor activation",
		tier:            "Tier 1",
		approvedTherapy: "Trastuzumab deruxtecan",
		prevalence:      "~3% of breast cancer (mutation, distinct from amplification)",
	},
}

// Reason answers the request from the knowledge table or a template.
func (r *RuleReasoner) Reason(_ context.Context, req Request) (Result, error) {
	switch req.Task {
	case TaskInterpretMutation:
		return r.interpretMutation(req)
	case TaskCaseSummary:
		return Result{Text: fmt.Sprintf("Case readiness for patient %s: %s", req.PatientID, renderContext(req.Context))}, nil
	case TaskReportSummary:
		return Result{Text: fmt.Sprintf("Genomic intelligence for patient %s: %s", req.PatientID, renderContext(req.Context))}, nil
	default:
		return Result{}, fmt.Errorf("unknown reasoning task %q", req.Task)
	}
}

func (r *RuleReasoner) interpretMutation(req Request) (Result, error) {
	gene, _ := req.Context["gene"].(string)
	variant, _ := req.Context["variant"].(string)
	if gene == "" || variant == "" {
		return Result{}, fmt.Errorf("interpret mutation: gene and variant are required")
	}

	key := strings.ToUpper(gene) + " " + strings.ToUpper(variant)
	know, ok := knownVariants[key]
	if !ok {
		// Gene-level match for variant-agnostic entries.
		know, ok = knownVariants[strings.ToUpper(gene)+" *"]
	}
	if !ok {
		know = variantKnowledge{
			significance: "Uncertain significance",
			mechanism:    "Not characterized in curated sources",
			tier:         "Tier 4",
		}
	}

	call := MutationCall{
		Gene:            gene,
		Variant:         variant,
		Significance:    know.significance,
		Mechanism:       know.mechanism,
		Tier:            know.tier,
		ApprovedTherapy: know.approvedTherapy,
		Prevalence:      know.prevalence,
	}

	raw, err := json.Marshal(call)
	if err != nil {
		return Result{}, fmt.Errorf("marshaling mutation call: %w", err)
	}

	return Result{
		Text: fmt.Sprintf("%s %s: %s, %s", gene, variant, call.Significance, call.Tier),
		JSON: raw,
	}, nil
}

package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/faithogundimu/core/internal/config"
	"github.com/faithogundimu/core/internal/coordinator"
	"github.com/faithogundimu/core/internal/fetch"
	"github.com/faithogundimu/core/internal/genomics"
	"github.com/faithogundimu/core/internal/pubmed"
	"github.com/faithogundimu/core/internal/reason"
	"github.com/faithogundimu/core/internal/source"
	"github.com/faithogundimu/core/internal/squad"
	"github.com/faithogundimu/core/internal/synthesis"
	"github.com/faithogundimu/core/internal/trials"
	"github.com/faithogundimu/core/internal/workflow"
)

// buildEngine wires the full engine from config: data sources, squad,
// synthesizer, workflow, Phase-2 pipeline and coordinator. The returned
// client is nil when the deterministic rule reasoner is in play; the cleanup
// closes the pathology store and must be called after the run.
func buildEngine(cfg *config.Config, logger *coordinator.DebugLogger, emitter *coordinator.EventEmitter, withGenomics bool) (*coordinator.Coordinator, *reason.Client, func(), error) {
	pathology, err := source.OpenPathology(cfg.Data.Path(cfg.Data.PathologyDB))
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() { pathology.Close() }

	ruleBook, err := source.LoadRuleBook(cfg.Data.Path(cfg.Data.ContraindicationRules))
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	fetchers := []fetch.Fetcher{
		&fetch.PathologyFetcher{Store: pathology},
		&fetch.RadiologyFetcher{Log: source.NewRadiologyLog(cfg.Data.Path(cfg.Data.RadiologyCSV))},
		&fetch.ClinicalFetcher{Store: source.NewClinicalStore(cfg.Data.Path(cfg.Data.ClinicalJSON))},
		&fetch.GenomicsFetcher{Registry: source.NewGenomicsRegistry(cfg.Data.Path(cfg.Data.GenomicsJSON))},
		&fetch.ContraindicationFetcher{Book: ruleBook},
	}

	sq, err := squad.New(fetchers,
		squad.WithTimeout(cfg.Orchestra.FetchTimeout),
		squad.WithLogf(logger.Log))
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	reasoner, client, err := buildReasoner(cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	synth := synthesis.New(
		synthesis.WithReasoner(reasoner),
		synthesis.WithLogf(logger.Log))
	wf := workflow.New(sq, synth)

	var pipeline coordinator.ReportRunner
	if withGenomics {
		trialClient, err := trials.NewClient(cfg.Trials, logger.Log)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		pubmedClient, err := pubmed.NewClient(cfg.PubMed, logger.Log)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		pipeline, err = genomics.New(reasoner, trialClient, pubmedClient,
			genomics.WithMaxTrials(cfg.Trials.MaxResults),
			genomics.WithStageTimeout(cfg.Orchestra.StageTimeout),
			genomics.WithLogf(logger.Log))
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
	}

	coord, err := coordinator.New(wf, pipeline,
		coordinator.WithMaxConcurrentCases(cfg.Orchestra.MaxConcurrentCases),
		coordinator.WithLogger(logger),
		coordinator.WithEmitter(emitter))
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	return coord, client, cleanup, nil
}

// buildReasoner selects the LLM reasoner when credentials are configured and
// the deterministic rule reasoner otherwise. The client is nil in the rule
// case; callers use it for token accounting.
func buildReasoner(cfg *config.Config) (reason.Reasoner, *reason.Client, error) {
	if cfg.Anthropic.APIKey == "" && !cfg.Anthropic.UseBedrock {
		return reason.NewRuleReasoner(), nil, nil
	}

	client, err := reason.NewClient(reason.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("configure reasoning client: %w", err)
	}
	return reason.NewLLMReasoner(client), client, nil
}

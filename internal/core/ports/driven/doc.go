// Package driven declares what the core needs from infrastructure.
//
//   - CorpusStore persists documents and chunks and keeps the full-text
//     index in step with them.
//   - Normaliser and NormaliserRegistry turn raw file bytes into ordered
//     text segments.
//   - PostProcessor and PostProcessorPipeline cut segments into chunks.
//   - Connector enumerates and reads source files.
//   - ConfigStore holds persisted settings.
//
// Adapters under internal/adapters, internal/normalisers,
// internal/postprocessors and internal/connectors implement these. This
// package imports nothing from internal/ except domain.
package driven

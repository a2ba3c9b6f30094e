// Package eph computes labor-force rates and income summaries from the individual microdata of the
// Encuesta Permanente de Hogares.
//
// Run discovers the quarterly files under InputRoot/<year>/, normalizes and filters the records,
// groups them by the keys of each configured Output and writes one CSV per output. The tables can
// also be written to an xlsx workbook and to ClickHouse or Postgres. Package chart draws them.
//
// Rates are weighted by PONDERA:
//
//	activity     = 100 * (employed + unemployed) / total
//	employment   = 100 * employed / total
//	unemployment = 100 * unemployed / (employed + unemployed)
//
// Income statistics are the mean, median and quartiles of IPCF over records with IPCF > 0.
package eph

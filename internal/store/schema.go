package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS aggregate_results (
    plan_id            TEXT PRIMARY KEY,
    success_rate       TEXT NOT NULL,
    num_runs           INTEGER NOT NULL,
    lower_percentile   INTEGER NOT NULL,
    upper_percentile   INTEGER NOT NULL,
    computed_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS portfolio_timeline (
    plan_id    TEXT NOT NULL REFERENCES aggregate_results(plan_id) ON DELETE CASCADE,
    age        INTEGER NOT NULL,
    p_lower    TEXT NOT NULL,
    p50        TEXT NOT NULL,
    p_upper    TEXT NOT NULL,
    PRIMARY KEY (plan_id, age)
);

CREATE TABLE IF NOT EXISTS account_timeline (
    plan_id      TEXT NOT NULL REFERENCES aggregate_results(plan_id) ON DELETE CASCADE,
    band         TEXT NOT NULL,
    account_id   TEXT NOT NULL,
    account_name TEXT NOT NULL,
    age          INTEGER NOT NULL,
    balance      TEXT NOT NULL,
    PRIMARY KEY (plan_id, band, account_id, age)
);

CREATE TABLE IF NOT EXISTS annual_detail (
    plan_id              TEXT NOT NULL REFERENCES aggregate_results(plan_id) ON DELETE CASCADE,
    band                 TEXT NOT NULL,
    age                  INTEGER NOT NULL,
    tax_federal_ordinary TEXT NOT NULL,
    tax_federal_ltcg     TEXT NOT NULL,
    tax_state            TEXT NOT NULL,
    effective_tax_rate   TEXT NOT NULL,
    shortfall            TEXT NOT NULL,
    PRIMARY KEY (plan_id, band, age)
);

CREATE TABLE IF NOT EXISTS income_detail (
    plan_id     TEXT NOT NULL REFERENCES aggregate_results(plan_id) ON DELETE CASCADE,
    band        TEXT NOT NULL,
    age         INTEGER NOT NULL,
    source_name TEXT NOT NULL,
    amount      TEXT NOT NULL,
    PRIMARY KEY (plan_id, band, age, source_name)
);

CREATE TABLE IF NOT EXISTS expense_detail (
    plan_id      TEXT NOT NULL REFERENCES aggregate_results(plan_id) ON DELETE CASCADE,
    band         TEXT NOT NULL,
    age          INTEGER NOT NULL,
    expense_name TEXT NOT NULL,
    amount       TEXT NOT NULL,
    PRIMARY KEY (plan_id, band, age, expense_name)
);

CREATE TABLE IF NOT EXISTS return_detail (
    plan_id      TEXT NOT NULL REFERENCES aggregate_results(plan_id) ON DELETE CASCADE,
    band         TEXT NOT NULL,
    age          INTEGER NOT NULL,
    account_id   TEXT NOT NULL,
    account_name TEXT NOT NULL,
    return_rate  TEXT NOT NULL,
    PRIMARY KEY (plan_id, band, age, account_id)
);
`

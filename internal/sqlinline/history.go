package sqlinline

const QInsertHistoryEntry = `--sql 9db7176f-1813-49bb-9954-12eb454e76d9
insert into render_history (
    id, batch_id, status, render_type, model, prompt, settings, seed,
    storage_key, mime,
    est_input_tokens, est_output_tokens, est_cost_usd
)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

const QCompleteHistoryEntry = `--sql 181f7e01-ee3b-484d-9857-52e869c11906
update render_history
set status = 'completed',
    storage_key = $2,
    mime = $3,
    actual_input_tokens = $4,
    actual_output_tokens = $5,
    actual_cost_usd = $6,
    variance_pct = $7,
    error_message = '',
    updated_at = now()
where id = $1;
`

const QFailHistoryEntry = `--sql 8d9a76e8-371b-4fac-840f-3aacedd5c5dc
update render_history
set status = 'failed',
    error_message = $2,
    updated_at = now()
where id = $1;
`

const QMarkInterruptedHistory = `--sql f1b3ae2e-5be3-441a-9df2-6e64f71c5379
update render_history
set status = 'failed',
    error_message = 'interrupted',
    updated_at = now()
where status = 'processing';
`

const QListHistory = `--sql d45bea2d-2c48-4bb4-861c-96570bed1b97
select id, batch_id, status, render_type, model, prompt, settings, seed,
       storage_key, mime, error_message,
       est_input_tokens, est_output_tokens, est_cost_usd,
       actual_input_tokens, actual_output_tokens, actual_cost_usd, variance_pct,
       created_at, updated_at
from render_history
order by created_at desc
limit $1 offset $2;
`

const QGetHistoryEntry = `--sql cb0e6f5f-7aac-45e4-a468-7fb2294adc6c
select id, batch_id, status, render_type, model, prompt, settings, seed,
       storage_key, mime, error_message,
       est_input_tokens, est_output_tokens, est_cost_usd,
       actual_input_tokens, actual_output_tokens, actual_cost_usd, variance_pct,
       created_at, updated_at
from render_history
where id = $1;
`

const QListHistoryByBatch = `--sql 0e4f9479-c78b-439e-9165-2b7ddf50b6c1
select id, batch_id, status, render_type, model, prompt, settings, seed,
       storage_key, mime, error_message,
       est_input_tokens, est_output_tokens, est_cost_usd,
       actual_input_tokens, actual_output_tokens, actual_cost_usd, variance_pct,
       created_at, updated_at
from render_history
where batch_id = $1
order by created_at asc;
`

const QDeleteHistoryEntry = `--sql 5a632f09-5d3a-4d20-9631-66d29cd3ea5b
delete from render_history where id = $1;
`

const QClearHistory = `--sql df49e79a-0602-4554-acd6-82ca1cb7a51a
delete from render_history;
`

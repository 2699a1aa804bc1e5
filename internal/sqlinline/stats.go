package sqlinline

const QIncrementStats = `--sql c0a4e8c1-996e-4519-895f-65319238dce4
insert into studio_stats (
    id, total_renders, total_videos, total_input_tokens, total_output_tokens, total_cost_usd, model_counts, updated_at
)
values (1, $1, $2, $3, $4, $5, jsonb_build_object($6::text, $7::bigint), now())
on conflict (id) do update
set total_renders = studio_stats.total_renders + excluded.total_renders,
    total_videos = studio_stats.total_videos + excluded.total_videos,
    total_input_tokens = studio_stats.total_input_tokens + excluded.total_input_tokens,
    total_output_tokens = studio_stats.total_output_tokens + excluded.total_output_tokens,
    total_cost_usd = studio_stats.total_cost_usd + excluded.total_cost_usd,
    model_counts = studio_stats.model_counts || jsonb_build_object(
        $6::text, coalesce((studio_stats.model_counts ->> $6)::bigint, 0) + $7
    ),
    updated_at = now();
`

const QGetStats = `--sql 44193775-be24-469a-9a01-1d81896e036f
select total_renders, total_videos, total_input_tokens, total_output_tokens, total_cost_usd, model_counts, updated_at
from studio_stats
where id = 1;
`

const QResetStats = `--sql 7c4adec7-04d6-45aa-8766-336133c0eecd
update studio_stats
set total_renders = 0,
    total_videos = 0,
    total_input_tokens = 0,
    total_output_tokens = 0,
    total_cost_usd = 0,
    model_counts = '{}'::jsonb,
    updated_at = now()
where id = 1;
`

package sqlinline

const QEnqueueBatch = `--sql ca7153db-471e-48b7-9061-42ae406475bc
insert into render_batches (id, status, settings, jobs, product_key, reference_key)
values ($1, 'queued', $2, $3, $4, $5);
`

const QClaimBatch = `--sql af958c20-d080-4610-9e59-c9c9e15c769f
with next_batch as (
    select id
    from render_batches
    where status = 'queued'
    order by created_at asc
    for update skip locked
    limit 1
),
claimed as (
    update render_batches
    set status = 'running', updated_at = now()
    where id in (select id from next_batch)
    returning id, settings, jobs, product_key, reference_key
)
select * from claimed;
`

const QFinishBatch = `--sql 179c5ed8-a00c-4690-b285-e0f1373d23ff
update render_batches
set status = $2, updated_at = now()
where id = $1;
`

const QFailRunningBatches = `--sql d2a87d72-90b6-4620-b6bd-fb08bb99b323
update render_batches
set status = 'failed', updated_at = now()
where status = 'running';
`

const QGetBatch = `--sql 32a3e082-8d80-446e-a7cd-4fd9d9360e25
select id, status, settings, jobs, product_key, reference_key, created_at, updated_at
from render_batches
where id = $1;
`

package sqlinline

const QPing = `--sql 79e00c09-41e0-4f8e-9eab-b91c08fc3776
select 1;
`

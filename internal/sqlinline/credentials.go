package sqlinline

const QSelectCredential = `--sql e317bb43-67aa-475a-94eb-6ae8fca752ae
select token, needs_reselect
from integration_credentials
where provider = $1;
`

const QUpsertCredential = `--sql b822b931-ce54-4426-b051-365fd5300722
insert into integration_credentials (provider, token, needs_reselect, updated_at)
values ($1, $2, false, now())
on conflict (provider) do update
set token = excluded.token,
    needs_reselect = false,
    updated_at = now();
`

const QFlagCredentialReselect = `--sql faff205c-4db0-4409-9e2e-1400a7ce1844
update integration_credentials
set needs_reselect = true, updated_at = now()
where provider = $1;
`
